// cmd/claimcheck/health.go
package main

import (
	"github.com/spf13/cobra"

	"claimcheck/internal/models"
)

func newHealthCmd(c *cli) *cobra.Command {
	profile := models.DefaultHealthCheckInput()

	cmd := &cobra.Command{
		Use:     "health",
		Short:   "Get a health assessment from a short questionnaire",
		Long:    "Submits the questionnaire for assessment. Every answer has a prefilled default.",
		Args:    cobra.NoArgs,
		PreRunE: c.requireSession,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.Env(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := e.services.Health.CheckHealth(cmd.Context(), profile)
			if err != nil {
				return err
			}
			if c.opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			renderHealth(cmd.OutOrStdout(), *resp)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&profile.Age, "age", profile.Age, "age in years")
	f.Float64Var(&profile.Height, "height", profile.Height, "height in cm")
	f.Float64Var(&profile.Weight, "weight", profile.Weight, "weight in kg")
	f.StringVar(&profile.Gender, "gender", profile.Gender, "gender")
	f.StringVar(&profile.ActivityLevel, "activity-level", profile.ActivityLevel, "activity level")
	f.StringVar(&profile.MedicalConditions, "conditions", profile.MedicalConditions, "existing medical conditions")
	f.StringVar(&profile.Medications, "medications", profile.Medications, "current medications")
	f.StringVar(&profile.Diet, "diet", profile.Diet, "typical diet")
	f.Float64Var(&profile.Sleep, "sleep", profile.Sleep, "hours of sleep per night")
	f.IntVar(&profile.Stress, "stress", profile.Stress, "stress level from 1 to 10")
	f.StringVar(&profile.Exercise, "exercise", profile.Exercise, "exercise routine")
	return cmd
}
