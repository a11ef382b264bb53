package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"github.com/Boiya123/agritrack-ledger/internal/identity"
	"github.com/Boiya123/agritrack-ledger/pkg/client"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	gatewayURL  string
	bearerToken string
	cfgFile     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "agritrack",
	Short: "Agritrack ledger CLI",
	Long: `agritrack is the command-line interface for the Agritrack supply
chain ledger.

It submits transactions to a ledger gateway, queries recorded state, and
issues access tokens for local development.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.agritrack")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if gatewayURL == "" {
			gatewayURL = viper.GetString("gateway_url")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:8080"
		}
		if bearerToken == "" {
			bearerToken = viper.GetString("token")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.agritrack/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway", "", "ledger gateway URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&bearerToken, "token", "", "access token (default from config or AGRITRACK_TOKEN)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func newClient() *client.Client {
	return client.New(gatewayURL, client.WithBearerToken(bearerToken))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ── submit ───────────────────────────────────────────────────────────────────

var submitCmd = &cobra.Command{
	Use:   "submit <operation> [arg...]",
	Short: "Submit a state-changing transaction",
	Long: `Submit executes a state-changing ledger operation, for example:

  agritrack submit CreateProduct prod-1 "Arabica beans" "washed"
  agritrack submit CreateBatch batch-1 prod-1 farm-9 BN-001 500 2026-03-01 2026-06-01 Huila "" ""
  agritrack submit UpdateBatchStatus batch-1 IN_PROGRESS`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txID, result, err := newClient().Submit(context.Background(), args[0], args[1:]...)
		if err != nil {
			return err
		}
		fmt.Printf("tx: %s\n", txID)
		var v any
		if err := json.Unmarshal(result, &v); err != nil {
			return err
		}
		return printJSON(v)
	},
}

// ── evaluate ─────────────────────────────────────────────────────────────────

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <operation> [arg...]",
	Short: "Run a read-only query against the ledger",
	Long: `Evaluate runs a read-only operation, for example:

  agritrack evaluate GetBatch batch-1
  agritrack evaluate GetBatchesByOwner farm-9
  agritrack evaluate GetTransportTemperatureLogs tr-1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newClient().Evaluate(context.Background(), args[0], args[1:]...)
		if err != nil {
			return err
		}
		var v any
		if err := json.Unmarshal(result, &v); err != nil {
			return err
		}
		return printJSON(v)
	},
}

// ── trace ────────────────────────────────────────────────────────────────────

var traceCmd = &cobra.Command{
	Use:   "trace <batch-id>",
	Short: "Print the full recorded history of a batch",
	Long: `Trace walks every record linked to a batch: the batch itself, its
lifecycle events, transports with their temperature logs, processing
records with their certifications, and regulatory records.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func runTrace(cmd *cobra.Command, args []string) error {
	batchID := args[0]
	c := newClient()
	ctx := context.Background()

	var batch struct {
		ID             string `json:"id"`
		ProductID      string `json:"product_id"`
		OwnerID        string `json:"owner_id"`
		BusinessNumber string `json:"business_number"`
		Status         string `json:"status"`
		Quantity       int    `json:"quantity"`
	}
	if err := c.EvaluateInto(ctx, &batch, "GetBatch", batchID); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "BATCH\t%s\t%s\tqty=%d\towner=%s\tbn=%s\n",
		batch.ID, batch.Status, batch.Quantity, batch.OwnerID, batch.BusinessNumber)

	var events []struct {
		ID        string `json:"id"`
		EventType string `json:"event_type"`
		EventDate string `json:"event_date"`
	}
	if err := c.EvaluateInto(ctx, &events, "GetBatchLifecycleEvents", batchID); err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Fprintf(w, "  EVENT\t%s\t%s\t%s\n", ev.ID, ev.EventType, ev.EventDate)
	}

	var transports []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.EvaluateInto(ctx, &transports, "GetTransportsByBatch", batchID); err != nil {
		return err
	}
	for _, tr := range transports {
		fmt.Fprintf(w, "  TRANSPORT\t%s\t%s\n", tr.ID, tr.Status)
		var logs []struct {
			ID          string  `json:"id"`
			Reading     float64 `json:"reading"`
			IsViolation bool    `json:"is_violation"`
		}
		if err := c.EvaluateInto(ctx, &logs, "GetTransportTemperatureLogs", tr.ID); err != nil {
			return err
		}
		for _, lg := range logs {
			mark := ""
			if lg.IsViolation {
				mark = "VIOLATION"
			}
			fmt.Fprintf(w, "    TEMP\t%s\t%.1f\t%s\n", lg.ID, lg.Reading, mark)
		}
	}

	var procs []struct {
		ID string `json:"id"`
	}
	if err := c.EvaluateInto(ctx, &procs, "GetProcessingByBatch", batchID); err != nil {
		return err
	}
	for _, p := range procs {
		fmt.Fprintf(w, "  PROCESSING\t%s\n", p.ID)
		var certs []struct {
			ID       string `json:"id"`
			CertType string `json:"cert_type"`
			Status   string `json:"status"`
		}
		if err := c.EvaluateInto(ctx, &certs, "GetCertificationsByProcessing", p.ID); err != nil {
			return err
		}
		for _, cert := range certs {
			fmt.Fprintf(w, "    CERT\t%s\t%s\t%s\n", cert.ID, cert.CertType, cert.Status)
		}
	}

	var regs []struct {
		ID         string `json:"id"`
		RecordType string `json:"record_type"`
		Status     string `json:"status"`
	}
	if err := c.EvaluateInto(ctx, &regs, "GetRegulatoryRecordsByBatch", batchID); err != nil {
		return err
	}
	for _, r := range regs {
		fmt.Fprintf(w, "  REGULATORY\t%s\t%s\t%s\n", r.ID, r.RecordType, r.Status)
	}

	return w.Flush()
}

// ── token ────────────────────────────────────────────────────────────────────

var (
	tokenRole    string
	tokenSubject string
	tokenSecret  string
	tokenIssuer  string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for local development",
	Long: `Token signs an HS256 access token with the gateway's shared secret.
The secret and issuer URL must match the running gateway's configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenSecret == "" {
			tokenSecret = viper.GetString("token_secret")
		}
		if tokenSecret == "" {
			return fmt.Errorf("--secret is required (or set token_secret in config)")
		}
		role := model.Role(tokenRole)
		switch role {
		case model.RoleProducer, model.RoleInspector, model.RoleAdmin:
		default:
			return fmt.Errorf("--role must be producer, inspector, or admin")
		}
		if tokenIssuer == "" {
			tokenIssuer = gatewayURL
		}

		iss := identity.NewIssuer([]byte(tokenSecret), tokenIssuer, tokenTTL)
		tok, err := iss.Issue(tokenSubject, role)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", "role to assert: producer, inspector, or admin")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "dev", "token subject (party ID)")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "gateway token secret")
	tokenCmd.Flags().StringVar(&tokenIssuer, "issuer", "", "issuer URL (default: gateway URL)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("role")
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("agritrack", version)
	},
}
