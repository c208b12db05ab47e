package main

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var bulkFile string

var bulkCmd = &cobra.Command{
	Use:   "bulk [url...]",
	Short: "Qualify multiple leads sequentially with rate limiting",
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args
		if bulkFile != "" {
			fileURLs, err := readURLFile(bulkFile)
			if err != nil {
				return err
			}
			urls = append(urls, fileURLs...)
		}

		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		result, err := e.analyzer.AnalyzeBulk(cmd.Context(), urls)
		if err != nil {
			return eris.Wrap(err, "bulk analyze")
		}

		zap.L().Info("bulk analysis complete",
			zap.Int("succeeded", result.Succeeded),
			zap.Int("failed", result.Failed))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Leads)
	},
}

// readURLFile loads one URL per line, skipping blanks and # comments.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, eris.Wrap(scanner.Err(), "read url file")
}

func init() {
	bulkCmd.Flags().StringVar(&bulkFile, "file", "", "file with one URL per line")
	rootCmd.AddCommand(bulkCmd)
}
