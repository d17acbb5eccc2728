package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/safespeak/pkg/client"
)

// NewAnalyzeCmd groups the per-modality analysis subcommands.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze content for ethical and legal risk",
	}
	cmd.AddCommand(
		newAnalyzeTextCmd(),
		newAnalyzeImageCmd(),
		newAnalyzeAudioCmd(),
		newAnalyzeSpeechCmd(),
	)
	return cmd
}

func newAnalyzeTextCmd() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "text [text to analyze]",
		Short: "Analyze a text snippet",
		Long:  "Analyze a text snippet passed as an argument, read from a file with\n--file, or piped on stdin.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := resolveText(cmd, args, fromFile)
			if err != nil {
				return err
			}
			return runAnalysis(cmd, func(ctx context.Context, c *client.Client) (*client.AnalysisResult, error) {
				return c.AnalyzeText(ctx, text)
			})
		},
	}
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "read text from file instead of arguments")
	return cmd
}

func newAnalyzeImageCmd() *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "image <path>",
		Short: "Analyze an image (transcribes visible text, comments, captions)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, detected, err := readMediaFile(args[0])
			if err != nil {
				return err
			}
			if mediaType == "" {
				mediaType = detected
			}
			return runAnalysis(cmd, func(ctx context.Context, c *client.Client) (*client.AnalysisResult, error) {
				return c.AnalyzeImage(ctx, payload, mediaType)
			})
		},
	}
	cmd.Flags().StringVar(&mediaType, "media-type", "", "image media type (default inferred from extension, falling back to image/png)")
	return cmd
}

func newAnalyzeAudioCmd() *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "audio <path>",
		Short: "Analyze a pre-recorded audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, detected, err := readMediaFile(args[0])
			if err != nil {
				return err
			}
			if mediaType == "" {
				mediaType = detected
			}
			return runAnalysis(cmd, func(ctx context.Context, c *client.Client) (*client.AnalysisResult, error) {
				return c.AnalyzeAudio(ctx, payload, mediaType)
			})
		},
	}
	cmd.Flags().StringVar(&mediaType, "media-type", "", "audio media type (default inferred from extension, falling back to audio/mp3)")
	return cmd
}

func newAnalyzeSpeechCmd() *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "speech <path>",
		Short: "Analyze a speech recording (transcription, tone, and legal analysis)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, detected, err := readMediaFile(args[0])
			if err != nil {
				return err
			}
			if mediaType == "" {
				mediaType = detected
			}
			return runAnalysis(cmd, func(ctx context.Context, c *client.Client) (*client.AnalysisResult, error) {
				return c.AnalyzeSpeech(ctx, payload, mediaType)
			})
		},
	}
	cmd.Flags().StringVar(&mediaType, "media-type", "", "audio media type (default inferred from extension, falling back to audio/wav)")
	return cmd
}

// runAnalysis executes call with the CLI's client and renders the result.
func runAnalysis(cmd *cobra.Command, call func(context.Context, *client.Client) (*client.AnalysisResult, error)) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	result, err := call(ctx, cliCtx.Client)
	if err != nil {
		return err
	}

	if strings.EqualFold(cliCtx.OutputFormat, "json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	RenderRiskBox(cmd.OutOrStdout(), result, cliCtx.NoColor)
	return nil
}

// resolveText picks the input text from --file, arguments, or stdin.
func resolveText(cmd *cobra.Command, args []string, fromFile string) (string, error) {
	if fromFile != "" {
		raw, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", fromFile, err)
		}
		return string(raw), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(raw), nil
}

// extensionMediaTypes maps common upload extensions to media types.
var extensionMediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".mp3":  "audio/mp3",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
}

func readMediaFile(path string) ([]byte, string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return payload, extensionMediaTypes[strings.ToLower(filepath.Ext(path))], nil
}
