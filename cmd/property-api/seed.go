package main

import (
	"fmt"
	"math/rand"

	"github.com/Sternrassler/property-listings/pkg/properties"
	"github.com/spf13/cobra"
)

var seedLocations = []string{"Nairobi", "Mombasa", "Kisumu", "Nakuru", "Eldoret", "Malindi"}

func newSeedCmd(configPath *string) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("count must be positive (got %d)", count)
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			for i := range count {
				p := sampleProperty(i + 1)
				if err := a.service.Create(cmd.Context(), p); err != nil {
					return fmt.Errorf("seed property %d: %w", i+1, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d properties into %s\n", count, cfg.DBPath)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of properties to insert")
	return cmd
}

func sampleProperty(n int) *properties.Property {
	location := seedLocations[rand.Intn(len(seedLocations))]
	return &properties.Property{
		Title:       fmt.Sprintf("%s listing #%d", location, n),
		Description: "Sample property",
		Price:       fmt.Sprintf("%d.00", 50000+rand.Intn(950000)),
		Location:    location,
	}
}
