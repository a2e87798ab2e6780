package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

type analyzeOptions struct {
	server  string
	apiKey  string
	jobs    int
	timeout time.Duration
	asJSON  bool
}

// analysisResponse mirrors the server's analyze response
type analysisResponse struct {
	ID              string                  `json:"id"`
	Provider        string                  `json:"provider"`
	ConfidenceScore float64                 `json:"confidence_score"`
	Details         domain.ConfidenceResult `json:"details"`
	Emotions        domain.EmotionScores    `json:"emotions"`
	Cached          bool                    `json:"cached"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fileResult struct {
	Path     string            `json:"path"`
	Analysis *analysisResponse `json:"analysis,omitempty"`
	Err      string            `json:"error,omitempty"`
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <image|dir>...",
		Short: "Send images to a MetaMind server and print their scores",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.apiKey == "" {
				opts.apiKey = os.Getenv("METAMIND_API_KEY")
			}

			files, err := collectImages(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no images found")
			}

			client := &http.Client{Timeout: opts.timeout}
			results, err := analyzeAll(cmd.Context(), client, opts, files)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Err != "" {
					failed++
				}
			}

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, r := range results {
					if r.Err != "" {
						errorColor.Fprintf(out, "%s: %s\n", r.Path, r.Err)
						continue
					}
					printResult(out, r.Path, r.Analysis.Emotions, r.Analysis.Details)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:10000", "MetaMind server base URL")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "bearer key (default $METAMIND_API_KEY)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "concurrent requests")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "per-request timeout")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	return cmd
}

// collectImages expands directories into their image files, sorted
func collectImages(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && imageExtensions[strings.ToLower(filepath.Ext(path))] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// analyzeAll posts every file with at most opts.jobs requests in flight.
// Per-file failures are recorded in the result; only cancellation aborts.
func analyzeAll(ctx context.Context, client *http.Client, opts analyzeOptions, files []string) ([]fileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	jobs := opts.jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			analysis, err := analyzeFile(ctx, client, opts, path)
			results[i] = fileResult{Path: path, Analysis: analysis}
			if err != nil {
				results[i].Err = err.Error()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func analyzeFile(ctx context.Context, client *http.Client, opts analyzeOptions, path string) (*analysisResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(opts.server, "/") + "/v1/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+opts.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Code != "" {
			return nil, fmt.Errorf("%s: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var analysis analysisResponse
	if err := json.Unmarshal(respBody, &analysis); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &analysis, nil
}
