package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spacesedan/sentitable/config"
	"github.com/spacesedan/sentitable/internal/clients"
	"github.com/spacesedan/sentitable/internal/enrichment"
	"github.com/spacesedan/sentitable/internal/logging"
	"github.com/spacesedan/sentitable/internal/models"
	"github.com/spacesedan/sentitable/internal/table"
	"github.com/spacesedan/sentitable/internal/widget"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatHTML = "html"
	formatJSON = "json"
)

type renderParams struct {
	bindingPath string
	apiKey      string
	provider    string
	format      string
	wait        time.Duration
	logLevel    string
}

func newRenderCommand() *cobra.Command {
	params := renderParams{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a data binding once and print the enriched table",
		Long: `Render a data binding once, wait for every sentiment cell to settle
(or for --wait to elapse) and print the table.

The API key defaults to GEMINI_API_KEY when --api-key is not set.`,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			switch params.format {
			case formatText, formatHTML, formatJSON:
				return nil
			default:
				return fmt.Errorf("unknown format %q", params.format)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return render(ctx, params, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&params.bindingPath, "binding", "", "path to a data binding JSON file")
	cmd.Flags().StringVar(&params.apiKey, "api-key", os.Getenv("GEMINI_API_KEY"), "classifier API key")
	cmd.Flags().StringVar(&params.provider, "provider", "", "classifier provider: gemini, genai, openai or vader (default from CLASSIFIER_PROVIDER)")
	cmd.Flags().StringVar(&params.format, "format", formatText, "output format: text, html or json")
	cmd.Flags().DurationVar(&params.wait, "wait", 30*time.Second, "how long to wait for enrichment to settle")
	cmd.Flags().StringVar(&params.logLevel, "log-level", "warn", "log level")
	_ = cmd.MarkFlagRequired("binding")

	return cmd
}

func render(ctx context.Context, params renderParams, stdout io.Writer) error {
	logging.InitLogger(params.logLevel)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if params.provider != "" {
		cfg.Provider = params.provider
	}

	b, err := readBinding(params.bindingPath)
	if err != nil {
		return err
	}

	classifier, _, err := clients.NewClassifier(clients.ClassifierOptions{
		Provider:      cfg.Provider,
		GeminiBaseURL: cfg.GeminiBaseURL,
		GeminiModel:   cfg.GeminiModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
		Timeout:       cfg.ClassifyTimeout,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	coordinator := enrichment.NewCoordinator(classifier, enrichment.WithMaxConcurrency(cfg.MaxConcurrency))
	w := widget.New(ctx, "cli", coordinator, nil)
	defer func() {
		w.Close()
		cancel()
		coordinator.Wait()
	}()

	w.SetAPIKey(params.apiKey)
	w.SetDataBinding(b)
	if !w.Render() {
		return errors.New("binding is not ready to render")
	}

	waitSettled(ctx, w, params.wait)
	return writeSnapshot(stdout, params.format, w.Snapshot())
}

func readBinding(path string) (*models.DataBinding, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read binding: %w", err)
	}
	var b models.DataBinding
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode binding %s: %w", path, err)
	}
	return &b, nil
}

// waitSettled polls until no cell is pending, the timeout passes or ctx ends.
func waitSettled(ctx context.Context, w *widget.Widget, timeout time.Duration) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()

	for {
		if v := w.View(); v == nil || v.Pending() == 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}

func writeSnapshot(out io.Writer, format string, snap table.Snapshot) error {
	switch format {
	case formatHTML:
		if _, err := io.WriteString(out, "<style>"+table.Style+"</style>\n"); err != nil {
			return err
		}
		return table.HTML(snap).Render(context.Background(), out)
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	default:
		table.WriteText(out, snap)
		return nil
	}
}
