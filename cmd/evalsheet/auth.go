// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evalsheet/internal/api"
	"github.com/pdiddy/evalsheet/internal/session"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Register, log in, and log out",
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the evaluation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credsFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := newClient(loadConfig()).Register(cmd.Context(), creds); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Registered. Log in with \"auth login\".")
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credsFromFlags(cmd)
		if err != nil {
			return err
		}
		token, err := newClient(loadConfig()).Login(cmd.Context(), creds)
		if err != nil {
			return err
		}
		if token != "" {
			if err := session.Save(configDir(), token); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.Clear(configDir()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func credsFromFlags(cmd *cobra.Command) (api.Credentials, error) {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	return api.Credentials{Username: username, Password: password}, nil
}

func init() {
	for _, c := range []*cobra.Command{authRegisterCmd, authLoginCmd} {
		c.Flags().String("username", "", "account name (required)")
		c.Flags().String("password", "", "account password (required)")
		c.MarkFlagRequired("username")
		c.MarkFlagRequired("password")
	}

	authCmd.AddCommand(authRegisterCmd, authLoginCmd, authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}
