package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the knowledge base used for analysis context",
}

var kbAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Index a document (.txt or .md)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		doc, err := e.kb.Ingest(cmd.Context(), filepath.Base(args[0]), data)
		if err != nil {
			return eris.Wrap(err, "ingest document")
		}

		zap.L().Info("document indexed",
			zap.String("id", doc.ID),
			zap.Int("chunks", doc.ChunkCount))
		fmt.Printf("indexed %s as %s (%d chunks)\n", doc.Filename, doc.ID, doc.ChunkCount)
		return nil
	},
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		docs, err := e.kb.List(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "list documents")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	},
}

var kbSearchTopK int

var kbSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed chunks by similarity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		hits, err := e.kb.Search(cmd.Context(), args[0], kbSearchTopK)
		if err != nil {
			return eris.Wrap(err, "search")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	},
}

var kbRemoveCmd = &cobra.Command{
	Use:   "remove <document-id>",
	Short: "Remove a document and all of its chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.kb.Delete(cmd.Context(), args[0]); err != nil {
			return eris.Wrap(err, "remove document")
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

func init() {
	kbSearchCmd.Flags().IntVar(&kbSearchTopK, "top-k", 0, "number of results (default from config)")
	kbCmd.AddCommand(kbAddCmd, kbListCmd, kbSearchCmd, kbRemoveCmd)
	rootCmd.AddCommand(kbCmd)
}
