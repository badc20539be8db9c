// cmd/claimcheck/crop.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/models"
	cropimage "claimcheck/internal/workers/media/crop-image"
)

func newCropCmd(c *cli) *cobra.Command {
	var area, out string

	cmd := &cobra.Command{
		Use:   "crop <image>",
		Short: "Crop a label photo to the region holding the text",
		Long: `Crops an image to --area and writes the result as JPEG. Without --area
the image is passed through unchanged. Without --out the result is printed
as a data: URI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.Env(cmd.Context())
			if err != nil {
				return err
			}

			session := cropimage.NewSession(e.services.Crop, toImageSource(args[0]))
			var image string
			if area == "" {
				image, err = session.Skip(cmd.Context())
			} else {
				ca, perr := parseCropArea(area)
				if perr != nil {
					return stderrors.NewInvalidInputError(perr.Error())
				}
				session.OnCropComplete(ca)
				image, err = session.ApplyCrop(cmd.Context())
			}
			if err != nil {
				return err
			}

			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), image)
				return nil
			}
			d, err := models.ParseDataURI(image)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, d.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %s)\n", out, len(d.Data), d.MediaType)
			return nil
		},
	}
	cmd.Flags().StringVar(&area, "area", "", "crop area as x,y,width,height")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the image to this file")
	return cmd
}
