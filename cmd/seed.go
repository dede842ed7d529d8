/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/staffdesk/apiserver/config"
	"github.com/staffdesk/apiserver/internal/db"
	"github.com/staffdesk/apiserver/internal/seed"
	"github.com/staffdesk/apiserver/internal/store"
)

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo organization into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer dbConn.Close()

		result, err := seed.Run(cmd.Context(),
			store.NewDepartmentRepository(dbConn),
			store.NewUserRepository(dbConn),
			store.NewEmployeeRepository(dbConn),
		)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		if result.Departments > 0 {
			log.Printf("seeded %d departments, %d users and %d employees", result.Departments, result.Users, result.Employees)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
