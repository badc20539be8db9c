// cmd/claimcheck/verify.go
package main

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/models"
	verifymanual "claimcheck/internal/workers/verification/verify-manual"
	verifymedia "claimcheck/internal/workers/verification/verify-media"
)

func newVerifyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "verify",
		Short:             "Verify a product's claims against its ingredients",
		PersistentPreRunE: c.requireSession,
	}
	cmd.AddCommand(newVerifyManualCmd(c), newVerifyURLCmd(c), newVerifyImageCmd(c))
	return cmd
}

func newVerifyManualCmd(c *cli) *cobra.Command {
	var claims, ingredients string

	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Verify typed-in claims and ingredients",
		Example: `  claimcheck verify manual --claims "No added sugar" \
    --ingredients "oats, dates, cane sugar"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.Env(cmd.Context())
			if err != nil {
				return err
			}
			out, err := e.services.Manual.Execute(cmd.Context(), &verifymanual.Input{
				Claims:      claims,
				Ingredients: ingredients,
			})
			if err != nil {
				return err
			}
			if c.opts.json {
				return printJSON(cmd.OutOrStdout(), out.Result)
			}
			renderVerification(cmd.OutOrStdout(), out.Result, c.color(cmd.OutOrStdout()))
			return nil
		},
	}
	cmd.Flags().StringVar(&claims, "claims", "", "marketing claims printed on the label")
	cmd.Flags().StringVar(&ingredients, "ingredients", "", "ingredient list printed on the label")
	return cmd
}

func newVerifyURLCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "url <product-page-url>",
		Short: "Scrape a product page and verify what it says",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.Env(cmd.Context())
			if err != nil {
				return err
			}
			out, err := e.services.URL.VerifyURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.opts.json {
				return printJSON(cmd.OutOrStdout(), out)
			}
			renderVerification(cmd.OutOrStdout(), out.Result, c.color(cmd.OutOrStdout()))
			return nil
		},
	}
}

type imageFlags struct {
	source string
	crop   string
	text   string
}

func (f imageFlags) input(label string) (verifymedia.ImageInput, error) {
	in := verifymedia.ImageInput{Source: toImageSource(f.source), Text: f.text}
	if f.crop != "" {
		area, err := parseCropArea(f.crop)
		if err != nil {
			return in, stderrors.NewInvalidInputError(fmt.Sprintf("%s crop: %v", label, err))
		}
		in.Crop = &area
	}
	return in, nil
}

func newVerifyImageCmd(c *cli) *cobra.Command {
	var claims, ingredients imageFlags

	cmd := &cobra.Command{
		Use:   "image",
		Short: "Read claims and ingredients from label photos and verify them",
		Long: `Reads the claims and the ingredients from two label photos. Each photo
may be cropped first; --claims-text and --ingredients-text replace the
OCR result for that photo.`,
		Example: `  claimcheck verify image --claims-image front.jpg --claims-crop 40,60,600,200 \
    --ingredients-image back.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.Env(cmd.Context())
			if err != nil {
				return err
			}
			var input verifymedia.Input
			if input.Claims, err = claims.input("claims"); err != nil {
				return err
			}
			if input.Ingredients, err = ingredients.input("ingredients"); err != nil {
				return err
			}

			out, err := e.services.Media.Execute(cmd.Context(), &input)
			if err != nil {
				return err
			}
			if c.opts.json {
				return printJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Claims: %s\nIngredients: %s\n\n", out.ClaimsText, out.IngredientsText)
			renderVerification(w, out.Result, c.color(w))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&claims.source, "claims-image", "", "photo of the claims (path or data:/http(s): URL)")
	f.StringVar(&claims.crop, "claims-crop", "", "crop area for the claims photo as x,y,width,height")
	f.StringVar(&claims.text, "claims-text", "", "claims text, used instead of OCR")
	f.StringVar(&ingredients.source, "ingredients-image", "", "photo of the ingredients (path or data:/http(s): URL)")
	f.StringVar(&ingredients.crop, "ingredients-crop", "", "crop area for the ingredients photo as x,y,width,height")
	f.StringVar(&ingredients.text, "ingredients-text", "", "ingredients text, used instead of OCR")
	return cmd
}

// toImageSource turns a local path into a file:// URL and leaves URLs alone.
func toImageSource(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, ":") && !filepath.IsAbs(s) && !isWindowsDrive(s) {
		return s
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return s
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func isWindowsDrive(s string) bool {
	return len(s) > 2 && s[1] == ':' && (s[2] == '\\' || s[2] == '/')
}

// parseCropArea reads "x,y,width,height".
func parseCropArea(s string) (models.CropArea, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.CropArea{}, fmt.Errorf("want x,y,width,height, got %q", s)
	}
	var n [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return models.CropArea{}, fmt.Errorf("bad number %q", p)
		}
		n[i] = v
	}
	return models.CropArea{X: n[0], Y: n[1], Width: n[2], Height: n[3]}, nil
}
