package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"outagemonitor/internal/models"
	"outagemonitor/internal/schedule"
	"outagemonitor/internal/source"
)

var (
	parseFile   string
	parseFormat string
	parseQueue  string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse an outage page and print the schedule",
	Long: `Parse a saved outage page (--file) or the page the configured source
serves, and print the extracted schedule. With --queue only that queue is
printed together with its current supply status.

Examples:
  outagemonitor parse --file page.html
  outagemonitor parse --format yaml --queue 2.1
`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFile, "file", "f", "", "read markup from this file instead of the configured source")
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "output format (json or yaml)")
	parseCmd.Flags().StringVarP(&parseQueue, "queue", "q", "", "print only this queue")
	rootCmd.AddCommand(parseCmd)
}

type parsedOutage struct {
	Title  string          `json:"title" yaml:"title"`
	Queues models.Schedule `json:"queues" yaml:"queues"`
}

type parsedQueue struct {
	Title   string            `json:"title" yaml:"title"`
	Queue   string            `json:"queue" yaml:"queue"`
	Periods []string          `json:"periods" yaml:"periods"`
	Now     string            `json:"now" yaml:"now"`
	Status  models.PowerState `json:"status" yaml:"status"`
	NextOff *string           `json:"nextOff" yaml:"nextOff"`
	NextOn  *string           `json:"nextOn" yaml:"nextOn"`
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	raw, err := readPage(cmd.Context())
	if err != nil {
		return err
	}
	outage, err := schedule.Parse(raw)
	if err != nil {
		return err
	}
	return writeParsed(cmd.OutOrStdout(), parseFormat, outage, parseQueue, time.Now().In(cfg.Location()))
}

func readPage(ctx context.Context) (string, error) {
	if parseFile != "" {
		data, err := os.ReadFile(parseFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", parseFile, err)
		}
		return string(data), nil
	}

	store, closeStore, err := openStore()
	if err != nil {
		return "", err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout())
	defer cancel()
	return source.New(cfg, store, nil).Page(ctx)
}

func writeParsed(w io.Writer, format string, outage models.Outage, queue string, now time.Time) error {
	var payload any = parsedOutage{Title: outage.Article.Title, Queues: outage.Queues}
	if queue != "" {
		periods, ok := outage.Queues[queue]
		if !ok {
			return fmt.Errorf("queue %s not found", queue)
		}
		status, err := schedule.ResolveStatus(periods, schedule.MinutesOfDay(now))
		if err != nil {
			logger.Warn().Err(err).Str("queue", queue).Msg("queue has unparsable periods")
		}
		payload = parsedQueue{
			Title:   outage.Article.Title,
			Queue:   queue,
			Periods: periods,
			Now:     now.Format("15:04"),
			Status:  status.Status,
			NextOff: status.NextOff,
			NextOn:  status.NextOn,
		}
	}

	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
