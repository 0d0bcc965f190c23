package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/anime-shed/blur-inspector-go/internal/config"
	"github.com/anime-shed/blur-inspector-go/internal/container"
	"github.com/anime-shed/blur-inspector-go/internal/logger"
	"github.com/anime-shed/blur-inspector-go/pkg/models"
	"github.com/spf13/cobra"
)

// NewScoreCmd creates the score command.
func NewScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [image...]",
		Short: "Score one or more images for blur",
		Long: `Score fetches every image, scores it and prints the verdict.

Examples:
  # Score a local photo
  blurcheck score photo.jpg

  # Score several images four at a time with a stricter threshold
  blurcheck score -b 4 --threshold 15 a.jpg b.jpg https://example.com/c.png

  # Use the full-frame statistic and print JSON
  blurcheck score --mode full_frame --json photo.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScoreCmd,
	}

	cmd.Flags().IntP("patch-size", "p", 0, "Half-size of the scoring window (default from config)")
	cmd.Flags().Float64P("threshold", "t", 0, "Scores below this are blurry (default from config)")
	cmd.Flags().String("border", "", "Border handling: replicate or reflect101")
	cmd.Flags().StringP("mode", "m", "", "Scoring mode: window, full_frame or reference")
	cmd.Flags().IntP("batch", "b", 0, "Number of images scored concurrently (default from config)")
	cmd.Flags().String("previous", "", "Fingerprint of an earlier shot, to flag retakes")
	cmd.Flags().BoolP("json", "j", false, "Output the JSON batch report")
	cmd.Flags().Bool("fail-blurry", false, "Exit non-zero when any image is blurry")

	return cmd
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)

	cfg, err := buildConfig(cmd, len(args))
	if err != nil {
		return err
	}
	req, err := buildRequest(cmd, args)
	if err != nil {
		return err
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := c.Service().ScoreBatch(ctx, req)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		printReport(cmd.OutOrStdout(), resp, len(args) > 1)
	}

	if resp.Failed > 0 {
		return fmt.Errorf("%d of %d images could not be scored", resp.Failed, resp.Total)
	}
	failBlurry, _ := cmd.Flags().GetBool("fail-blurry")
	if failBlurry {
		if rejected := countRejected(resp); rejected > 0 {
			return fmt.Errorf("%d of %d images are blurry", rejected, resp.Total)
		}
	}
	return nil
}

// setupLogging keeps stdout for the report.
func setupLogging(cmd *cobra.Command) {
	logger.UseText(cmd.ErrOrStderr())
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err == nil && verbose {
		logger.SetLevel("debug")
		return
	}
	logger.SetLevel("warn")
}

func buildConfig(cmd *cobra.Command, images int) (*config.Config, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	cfg.AllowFileURLs = true
	if cmd.Flags().Changed("batch") {
		cfg.BatchConcurrency, _ = cmd.Flags().GetInt("batch")
	}
	if images > cfg.MaxBatchSize {
		cfg.MaxBatchSize = images
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func buildRequest(cmd *cobra.Command, args []string) (models.BatchRequest, error) {
	req := models.BatchRequest{URLs: make([]string, 0, len(args))}
	for _, arg := range args {
		location, err := toLocation(arg)
		if err != nil {
			return req, err
		}
		req.URLs = append(req.URLs, location)
	}

	flags := cmd.Flags()
	if flags.Changed("patch-size") {
		patch, _ := flags.GetInt("patch-size")
		req.PatchSize = &patch
	}
	if flags.Changed("threshold") {
		threshold, _ := flags.GetFloat64("threshold")
		req.Threshold = &threshold
	}
	req.Border, _ = flags.GetString("border")
	req.Mode, _ = flags.GetString("mode")
	req.PreviousFingerprint, _ = flags.GetString("previous")
	return req, nil
}

// toLocation turns a plain path into an absolute file:// URL and passes
// anything with a scheme through.
func toLocation(arg string) (string, error) {
	if strings.Contains(arg, "://") {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", arg, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

func printReport(w io.Writer, resp *models.BatchResponse, summary bool) {
	for _, item := range resp.Items {
		name := displayName(item.Source)
		if item.Error != nil {
			fmt.Fprintf(w, "%s: error: %s\n", name, errorText(item.Error))
			continue
		}

		result := item.Result
		fmt.Fprintf(w, "%s: score %.2f (threshold %.2f)\n", name, result.Metrics.Score, result.Metrics.Threshold)
		if result.Verdict.Title != "" {
			fmt.Fprintf(w, "  %s: %s\n", result.Verdict.Title, result.Verdict.Message)
		} else {
			fmt.Fprintf(w, "  %s\n", result.Verdict.Message)
		}
		for _, issue := range result.Issues {
			if issue.Type == "blurriness" {
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", issue.Severity, issue.Message)
		}
		if result.Capture != nil {
			if camera := result.Capture.Camera(); camera != "" {
				fmt.Fprintf(w, "  camera %s\n", camera)
			}
		}
		if result.Fingerprint != "" {
			fmt.Fprintf(w, "  fingerprint %s\n", result.Fingerprint)
		}
	}

	if summary {
		fmt.Fprintf(w, "%d scored, %d blurry, %d failed in %.2fs\n",
			resp.Succeeded, resp.Blurry, resp.Failed, resp.ProcessingTimeSec)
	}
}

// countRejected counts scored images with a critical issue
func countRejected(resp *models.BatchResponse) int {
	rejected := 0
	for _, item := range resp.Items {
		if item.Result != nil && !item.Result.Accepted {
			rejected++
		}
	}
	return rejected
}

func displayName(source string) string {
	parsed, err := url.Parse(source)
	if err != nil || parsed.Scheme != "file" {
		return source
	}
	return parsed.Path
}

func errorText(e *models.ErrorResponse) string {
	if e.Message != "" {
		return e.Error + ": " + e.Message
	}
	return e.Error
}
