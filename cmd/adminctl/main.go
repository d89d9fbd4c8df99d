// adminctl is the operator's command line companion to the API server. It
// talks to the same database and is used for one-off chores that have no
// HTTP surface: bootstrapping admin users, seeding property listings, pruning
// expired calendar blocks and pulling external iCal feeds on a schedule.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"

	"github.com/Moosaa95/seqproject-backend/config"
	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/services"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

func main() {
	root := &cobra.Command{
		Use:   "adminctl",
		Short: "Operational tooling for the Sequoia Projects backend",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			storage.InitializeDB(cfg.DBConnectionString)
		},
	}

	root.AddCommand(createAdminCmd())
	root.AddCommand(seedPropertiesCmd())
	root.AddCommand(cleanupBlocksCmd())
	root.AddCommand(syncCalendarsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func createAdminCmd() *cobra.Command {
	var email, password, firstName, lastName, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin-console user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != models.RoleAdmin && role != models.RoleSuperAdmin && role != models.RoleStaff {
				return fmt.Errorf("invalid role %q", role)
			}

			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}

			user := models.User{
				FirstName: firstName,
				LastName:  lastName,
				Email:     email,
				Password:  hash,
				Role:      role,
			}
			if err := storage.DB.Create(&user).Error; err != nil {
				return fmt.Errorf("creating user: %w", err)
			}

			log.Printf("created %s user %s (id=%d)", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&role, "role", models.RoleAdmin, "admin, super_admin or staff")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

type seedProperty struct {
	Title         string   `json:"title"`
	Location      string   `json:"location"`
	Price         string   `json:"price"`
	Currency      string   `json:"currency"`
	Status        string   `json:"status"`
	Type          string   `json:"type"`
	Area          *int     `json:"area"`
	Guests        *int     `json:"guests"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	Description   string   `json:"description"`
	Amenities     []string `json:"amenities"`
	Entity        string   `json:"entity"`
	Featured      bool     `json:"featured"`
	AvailableFrom string   `json:"available_from"`
}

func seedPropertiesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-properties",
		Short: "Load property listings from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			var seeds []seedProperty
			if err := json.Unmarshal(raw, &seeds); err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}

			created := 0
			for _, seed := range seeds {
				property, err := propertyFromSeed(seed)
				if err != nil {
					return fmt.Errorf("property %q: %w", seed.Title, err)
				}
				if err := storage.DB.Create(property).Error; err != nil {
					return fmt.Errorf("property %q: %w", seed.Title, err)
				}
				created++
			}

			log.Printf("seeded %d properties", created)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a JSON array of properties")
	cmd.MarkFlagRequired("file")

	return cmd
}

func propertyFromSeed(seed seedProperty) (*models.Property, error) {
	price, err := decimal.NewFromString(seed.Price)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	property := &models.Property{
		Slug:        models.Slugify(seed.Title),
		Title:       seed.Title,
		Location:    seed.Location,
		Price:       price,
		Currency:    seed.Currency,
		Status:      seed.Status,
		Type:        seed.Type,
		Area:        seed.Area,
		Guests:      seed.Guests,
		Bedrooms:    seed.Bedrooms,
		Bathrooms:   seed.Bathrooms,
		Description: seed.Description,
		Entity:      seed.Entity,
		Featured:    seed.Featured,
	}

	if seed.Amenities != nil {
		encoded, err := json.Marshal(seed.Amenities)
		if err != nil {
			return nil, fmt.Errorf("amenities: %w", err)
		}
		property.Amenities = datatypes.JSON(encoded)
	}

	if seed.AvailableFrom != "" {
		from, err := models.ParseDate(seed.AvailableFrom)
		if err != nil {
			return nil, fmt.Errorf("available_from: %w", err)
		}
		property.AvailableFrom = &from
	}

	return property, nil
}

func syncCalendarsCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "sync-calendars",
		Short: "Pull every active external iCal feed into blocked dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			calendars := services.NewCalendarService(storage.DB, config.Load())

			reports, err := calendars.SyncAll()
			if err != nil {
				return err
			}

			synced, failed := 0, 0
			for _, report := range reports {
				if report.Error != "" {
					failed++
					log.Printf("FAILED %s (%s): %s", report.Property, report.Source, report.Error)
					continue
				}
				synced++
				log.Printf("synced %s (%s): %d created, %d updated of %d events",
					report.Property, report.Source,
					report.Result.Created, report.Result.Updated, report.Result.TotalEvents)
				if verbose {
					for _, msg := range report.Result.Errors {
						log.Printf("  event error: %s", msg)
					}
				}
			}

			log.Printf("done: %d synced, %d failed", synced, failed)
			if failed > 0 {
				return fmt.Errorf("%d calendar(s) failed to sync", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "print per-event errors")

	return cmd
}

func cleanupBlocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-blocks",
		Short: "Delete calendar blocks that ended in the past",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := models.Today()
			res := storage.DB.Where("end_date <= ?", today).Delete(&models.BlockedDate{})
			if res.Error != nil {
				return res.Error
			}
			log.Printf("removed %d expired blocks", res.RowsAffected)
			return nil
		},
	}
}
