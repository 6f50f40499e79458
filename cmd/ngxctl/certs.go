package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"go_ngxmgr/internal/app"
	"go_ngxmgr/internal/cert"
)

var certsFlags struct {
	format   string
	certFile string
	keyFile  string
}

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Inspect and materialize TLS certificates",
	Long: `Certificate utilities.

Subcommands:
  status  - classify every stored certificate
  persist - write one stored certificate to the certificate directory
  remove  - delete the files of one stored certificate
  check   - structural check of a cert/key pair on disk
  inspect - show subject, issuer, SANs and validity of a PEM file`,
}

var certsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Classify every stored certificate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			reports, err := a.Certificates.Status(cmd.Context())
			if err != nil {
				return err
			}
			if certsFlags.format == "json" {
				return writeJSON(cmd.OutOrStdout(), reports)
			}
			return printReports(cmd.OutOrStdout(), reports)
		})
	},
}

var certsPersistCmd = &cobra.Command{
	Use:   "persist <id>",
	Short: "Write <name>.crt and <name>.key for one certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("certificate", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			r, err := a.Certificates.Persist(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "persisted %s to %s\n", r.Name, a.Config.Nginx.CertDir)
			return nil
		})
	},
}

var certsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete <name>.crt and <name>.key of one certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("certificate", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := a.Certificates.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed files of certificate %d from %s\n", id, a.Config.Nginx.CertDir)
			return nil
		})
	},
}

var certsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a certificate and key pair on disk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		certPEM, err := os.ReadFile(certsFlags.certFile)
		if err != nil {
			return fmt.Errorf("failed to read certificate: %w", err)
		}
		keyPEM, err := os.ReadFile(certsFlags.keyFile)
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		if err := cert.ValidateCertificate(string(certPEM), string(keyPEM)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

var certsInspectCmd = &cobra.Command{
	Use:   "inspect <cert-file>",
	Short: "Show certificate details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		certPEM, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read certificate: %w", err)
		}
		d, err := cert.Inspect(string(certPEM))
		if err != nil {
			return err
		}
		if certsFlags.format == "json" {
			return writeJSON(cmd.OutOrStdout(), d)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Subject:    %s\n", d.Subject)
		fmt.Fprintf(out, "Issuer:     %s\n", d.Issuer)
		fmt.Fprintf(out, "DNS names:  %s\n", strings.Join(d.DNSNames, ", "))
		fmt.Fprintf(out, "Not before: %s\n", d.NotBefore.UTC().Format(time.RFC3339))
		fmt.Fprintf(out, "Not after:  %s\n", d.NotAfter.UTC().Format(time.RFC3339))
		return nil
	},
}

func printReports(w io.Writer, reports []cert.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tEXPIRES\tRENEW\tNOTE")
	for _, r := range reports {
		note := r.Error
		if note == "" && r.ExpiryMismatch {
			note = "stored expiry differs from certificate"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n", r.ID, r.Name, r.Status, r.ExpiredAt.UTC().Format(time.RFC3339), r.ShouldRenew, note)
	}
	return tw.Flush()
}

func parseID(what, arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(certsCmd)
	certsCmd.AddCommand(certsStatusCmd, certsPersistCmd, certsRemoveCmd, certsCheckCmd, certsInspectCmd)

	certsCmd.PersistentFlags().StringVar(&certsFlags.format, "format", "text", "output format: text, json")
	certsCheckCmd.Flags().StringVar(&certsFlags.certFile, "cert", "", "certificate PEM file")
	certsCheckCmd.Flags().StringVar(&certsFlags.keyFile, "key", "", "private key PEM file")
	_ = certsCheckCmd.MarkFlagRequired("cert")
	_ = certsCheckCmd.MarkFlagRequired("key")
}
