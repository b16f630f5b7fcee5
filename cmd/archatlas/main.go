package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"archatlas/internal/analysis"
	"archatlas/internal/autofix"
	"archatlas/internal/catalog"
	"archatlas/internal/domain"
	"archatlas/internal/enrich"
	"archatlas/internal/graph"
	awsimport "archatlas/internal/importer/aws"
	"archatlas/internal/logging"
	"archatlas/internal/outputter"
	"archatlas/internal/rules"
	"archatlas/internal/snapshot"
	"archatlas/internal/validator"
)

const version = "1.0.0"

func main() {
	var debug bool

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "archatlas",
		Short: "ArchAtlas - Architecture Security Analyzer",
		Long:  "Analyzes architecture diagrams for security findings, structural issues, STRIDE threats and attack paths",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logging.SetLogLevel(logging.LogLevelWarn)
			if debug {
				logging.SetLogLevel(logging.LogLevelDebug)
				fmt.Println("\n🔍 Debug logging: ENABLED")
			}
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (verbose output)")

	rootCmd.AddCommand(
		newAnalyzeCmd(ctx),
		newValidateCmd(),
		newFixCmd(),
		newImportCmd(ctx),
		newPaletteCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newAnalyzeCmd(ctx context.Context) *cobra.Command {
	var (
		enrichEndpoint string
		apiKeyParam    string
		abstraction    string
		cacheDir       string
		resultsDir     string
		markdownPath   string
		rulesPath      string
	)

	cmd := &cobra.Command{
		Use:   "analyze <graph.json>",
		Short: "Run the full security analysis on a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}

			engine, err := buildEngine(rulesPath)
			if err != nil {
				return err
			}

			var opts []analysis.Option
			if cacheDir != "" {
				cache, err := analysis.NewFileCache(cacheDir, analysis.DefaultCacheTTL)
				if err != nil {
					return err
				}
				opts = append(opts, analysis.WithCache(cache))
			}
			if enrichEndpoint != "" {
				apiKey, err := resolveAPIKey(ctx, apiKeyParam)
				if err != nil {
					return err
				}
				client, err := enrich.NewClient(enrichEndpoint, apiKey, enrich.AbstractionLevel(abstraction))
				if err != nil {
					return err
				}
				opts = append(opts, analysis.WithEnricher(client))
			}

			report, err := analysis.New(engine, opts...).Run(ctx, g)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			outputter.DisplayReport(report)
			path, err := outputter.SaveReport(report, resultsDir)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Saved report to: %s\n", path)

			if markdownPath != "" {
				if err := outputter.WriteMarkdown(report, markdownPath); err != nil {
					return err
				}
				fmt.Printf("✓ Saved markdown report to: %s\n", markdownPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&enrichEndpoint, "enrich", "", "LLM proxy endpoint for AI enrichment (optional)")
	cmd.Flags().StringVar(&apiKeyParam, "api-key-param", "", "SSM parameter holding the enrichment API key")
	cmd.Flags().StringVar(&abstraction, "abstraction", string(enrich.AbstractionAbstracted), "Data sharing level for enrichment: full, abstracted or confidential")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for the analysis cache (disabled when empty)")
	cmd.Flags().StringVar(&resultsDir, "output", "results", "Directory for JSON reports")
	cmd.Flags().StringVar(&markdownPath, "markdown", "", "Also write a markdown assessment report to this path")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Override the built-in rule catalog with a YAML file")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <graph.json>",
		Short: "Run only the architectural validation passes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}
			s, err := graph.New(g)
			if err != nil {
				return err
			}
			result := validator.Validate(s)
			outputter.DisplayValidation(result)
			if !result.Valid {
				return fmt.Errorf("architecture is invalid: %d errors", result.Summary.Errors)
			}
			return nil
		},
	}
}

func newFixCmd() *cobra.Command {
	var findingID, outPath string

	cmd := &cobra.Command{
		Use:   "fix <graph.json>",
		Short: "Apply an automatic fix for a finding and write the rewritten graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}
			s, err := graph.New(g)
			if err != nil {
				return err
			}

			engine, err := buildEngine("")
			if err != nil {
				return err
			}
			findings := engine.Evaluate(s)

			var target *domain.Finding
			for i := range findings {
				if findings[i].ID == findingID {
					target = &findings[i]
					break
				}
			}
			if target == nil {
				return fmt.Errorf("finding %q not present in the current analysis", findingID)
			}

			components, connections, err := autofix.Apply(*target, g.Components, g.Connections)
			if err != nil {
				return err
			}

			fixed := domain.Graph{Components: components, Connections: connections}
			if err := snapshot.New(fixed, nil, nil).Save(outPath); err != nil {
				return err
			}
			fmt.Printf("✓ Applied fix for %s, wrote %s\n", findingID, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&findingID, "finding", "", "ID of the finding to fix")
	cmd.Flags().StringVar(&outPath, "out", "graph.fixed.json", "Output path for the rewritten graph")
	_ = cmd.MarkFlagRequired("finding")
	return cmd
}

func newImportCmd(ctx context.Context) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "import aws",
		Short: "Build a graph snapshot from the current AWS account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != "aws" {
				return fmt.Errorf("unknown import source %q", args[0])
			}
			g, err := awsimport.Import(ctx)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			if err := snapshot.New(g, nil, nil).Save(outPath); err != nil {
				return err
			}
			fmt.Printf("✓ Imported %d components and %d connections to %s\n",
				len(g.Components), len(g.Connections), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "architecture.json", "Output path for the imported graph")
	return cmd
}

func newPaletteCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "List the component palette, protocols and security zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(catalogPath)
			if err != nil {
				return err
			}

			outputter.DisplayHeader("🧩 COMPONENT PALETTE")
			for _, e := range c.Components {
				fmt.Printf("   %-16s %-10s %s (%s)\n", e.ID, e.Type, e.Name, e.Category)
			}

			outputter.DisplayHeader("🔌 PROTOCOLS")
			for _, group := range []struct {
				name  string
				items []catalog.Protocol
			}{
				{"Secure", c.Protocols.Secure},
				{"Databases", c.Protocols.Databases},
				{"Legacy", c.Protocols.Legacy},
			} {
				fmt.Printf("  %s:\n", group.name)
				for _, p := range group.items {
					fmt.Printf("   %-16s %5d  %s\n", p.Name, p.Port, p.Description)
				}
			}

			outputter.DisplayHeader("🗺️  SECURITY ZONES")
			for _, z := range c.Zones {
				fmt.Printf("   %-12s %s\n", z.Name, z.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Override the built-in palette with a YAML file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("archatlas %s\n", version)
		},
	}
}

func buildEngine(rulesPath string) (*rules.Engine, error) {
	metas, err := catalog.LoadRules(rulesPath)
	if err != nil {
		return nil, err
	}
	return rules.NewEngine(metas), nil
}

// loadGraph accepts both a versioned snapshot document and a raw
// component/connection listing.
func loadGraph(path string) (domain.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("failed to read graph %s: %w", path, err)
	}

	if snap, err := snapshot.Decode(data); err == nil {
		return snap.Graph(), nil
	}

	var g domain.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return domain.Graph{}, fmt.Errorf("%s is neither a snapshot nor a graph: %w", path, err)
	}
	if len(g.Components) == 0 {
		return domain.Graph{}, fmt.Errorf("graph %s has no components", path)
	}
	return g, nil
}

// resolveAPIKey prefers the environment, then SSM when a parameter name
// is given. An empty result is fine for proxies with server-side keys.
func resolveAPIKey(ctx context.Context, parameterName string) (string, error) {
	if key := os.Getenv("ARCHATLAS_ENRICH_API_KEY"); key != "" {
		return key, nil
	}
	if parameterName == "" {
		return "", nil
	}
	key, err := awsimport.GetSSMParameter(ctx, parameterName)
	if err != nil {
		return "", fmt.Errorf("failed to resolve enrichment API key: %w", err)
	}
	return key, nil
}
