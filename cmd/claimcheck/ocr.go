// cmd/claimcheck/ocr.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/models"
	cropimage "claimcheck/internal/workers/media/crop-image"
)

func newOCRCmd(c *cli) *cobra.Command {
	var area string

	cmd := &cobra.Command{
		Use:   "ocr <image>",
		Short: "Extract the text from a label photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.Env(cmd.Context())
			if err != nil {
				return err
			}

			image := args[0]
			if !models.IsDataURI(image) && !models.IsBlobURI(image) || area != "" {
				// OCR only takes data: and blob: images; load anything else
				// through the cropper first.
				session := cropimage.NewSession(e.services.Crop, toImageSource(image))
				if area != "" {
					ca, perr := parseCropArea(area)
					if perr != nil {
						return stderrors.NewInvalidInputError(perr.Error())
					}
					session.OnCropComplete(ca)
					image, err = session.ApplyCrop(cmd.Context())
				} else {
					image, err = session.Skip(cmd.Context())
				}
				if err != nil {
					return err
				}
			}

			res := e.services.OCR.CheckImage(cmd.Context(), image)
			if c.opts.json {
				return printJSON(cmd.OutOrStdout(), res)
			}
			if !res.Success {
				return stderrors.NewTextExtractionFailedError(res.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.ExtractedText)
			return nil
		},
	}
	cmd.Flags().StringVar(&area, "area", "", "crop to x,y,width,height before extracting")
	return cmd
}
