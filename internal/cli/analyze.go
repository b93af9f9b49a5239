package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"irrigation-engine/internal/logging"
	"irrigation-engine/internal/model"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		file   string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full analysis pipeline on a request file and print the response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			body, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			var req model.AnalysisRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}
			if err := validator.New().Struct(&req); err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}

			// stdout carries the response; only warnings and above are logged.
			log, err := logging.New("warn", cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := logging.WithLogger(cmd.Context(), log)
			resp := newEngine(ctx, cfg, log, nil).Process(ctx, &req)
			if resp.CalculationMetadata.CalculationOutcome != model.OutcomeSuccess {
				log.Warn("analysis finished with critical messages",
					zap.Int("messages", len(resp.CalculationResult.Messages)))
			}

			var out []byte
			if pretty {
				out, err = json.MarshalIndent(resp, "", "  ")
			} else {
				out, err = json.Marshal(resp)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "analysis request JSON, - for stdin")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON response")
	return cmd
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return b, nil
}
