// Command galleyctl maintains the file store galleyd serves from: it
// registers stored files, sets their localized display names, and
// previews how a galley's references rewrite to download URLs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"galleyd/internal/server"
	"galleyd/internal/store"
	"galleyd/pkg/jats"
)

var (
	dbPath   string
	filesDir string
)

var rootCmd = &cobra.Command{
	Use:   "galleyctl",
	Short: "Maintain the galleyd file store",
}

var addOpts struct {
	submission int64
	galley     int64
	assoc      int64
	path       string
	mime       string
	name       string
	locale     string
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a stored file and print its id",
	RunE:  runAdd,
}

var nameOpts struct {
	file   int64
	locale string
	name   string
}

var nameCmd = &cobra.Command{
	Use:   "name",
	Short: "Set the display name of a file for one locale",
	RunE:  runName,
}

var depsOpts struct {
	file   int64
	locale string
}

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "List the dependent files of a galley file",
	RunE:  runDeps,
}

var rewriteOpts struct {
	submission int64
	galley     int64
	file       int64
	locale     string
	base       string
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Print an XML galley with its references rewritten to download URLs",
	RunE:  runRewrite,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "galleyd.db", "Path to the metadata database")
	rootCmd.PersistentFlags().StringVar(&filesDir, "files", "files", "Directory holding stored file content")

	addCmd.Flags().Int64Var(&addOpts.submission, "submission", 0, "Submission the file belongs to")
	addCmd.Flags().Int64Var(&addOpts.galley, "galley", 0, "Galley the file belongs to")
	addCmd.Flags().Int64Var(&addOpts.assoc, "assoc", 0, "Galley file this file depends on (omit for a galley file)")
	addCmd.Flags().StringVar(&addOpts.path, "path", "", "File path relative to the files directory")
	addCmd.Flags().StringVar(&addOpts.mime, "mime", "", "MIME type of the file")
	addCmd.Flags().StringVar(&addOpts.name, "name", "", "Display name of the file")
	addCmd.Flags().StringVar(&addOpts.locale, "locale", "en", "Locale of the display name")
	markRequired(addCmd, "submission", "galley", "path")

	nameCmd.Flags().Int64Var(&nameOpts.file, "file", 0, "Id of the file to name")
	nameCmd.Flags().StringVar(&nameOpts.locale, "locale", "en", "Locale of the display name")
	nameCmd.Flags().StringVar(&nameOpts.name, "name", "", "Display name of the file")
	markRequired(nameCmd, "file", "name")

	depsCmd.Flags().Int64Var(&depsOpts.file, "file", 0, "Id of the galley file")
	depsCmd.Flags().StringVar(&depsOpts.locale, "locale", "en", "Locale to resolve display names in")
	markRequired(depsCmd, "file")

	rewriteCmd.Flags().Int64Var(&rewriteOpts.submission, "submission", 0, "Submission the galley belongs to")
	rewriteCmd.Flags().Int64Var(&rewriteOpts.galley, "galley", 0, "Galley the file belongs to")
	rewriteCmd.Flags().Int64Var(&rewriteOpts.file, "file", 0, "Id of the galley file")
	rewriteCmd.Flags().StringVar(&rewriteOpts.locale, "locale", "en", "Locale to resolve display names in")
	rewriteCmd.Flags().StringVar(&rewriteOpts.base, "base", "http://localhost:8080", "Base URL for download links")
	markRequired(rewriteCmd, "submission", "galley", "file")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(rewriteCmd)
}

func markRequired(cmd *cobra.Command, flags ...string) {
	for _, f := range flags {
		if err := cmd.MarkFlagRequired(f); err != nil {
			panic(err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dbPath, filesDir)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.AddFile(cmd.Context(), store.File{
		SubmissionID: addOpts.submission,
		GalleyID:     addOpts.galley,
		AssocFileID:  addOpts.assoc,
		Path:         addOpts.path,
		MIMEType:     addOpts.mime,
	})
	if err != nil {
		return err
	}
	if addOpts.name != "" {
		if err := st.SetFileName(cmd.Context(), id, addOpts.locale, addOpts.name); err != nil {
			return err
		}
	}

	fmt.Println(id)
	return nil
}

func runName(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dbPath, filesDir)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.SetFileName(cmd.Context(), nameOpts.file, nameOpts.locale, nameOpts.name)
}

func runDeps(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dbPath, filesDir)
	if err != nil {
		return err
	}
	defer st.Close()

	deps, err := st.DependentFiles(cmd.Context(), depsOpts.file, depsOpts.locale)
	if err != nil {
		return err
	}
	for _, d := range deps {
		fmt.Printf("%d\t%s\t%s\t%s\n", d.ID, d.Name, d.Path, d.MIMEType)
	}
	return nil
}

func runRewrite(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dbPath, filesDir)
	if err != nil {
		return err
	}
	defer st.Close()

	urls, err := server.NewURLBuilder(rewriteOpts.base)
	if err != nil {
		return err
	}

	f, err := st.Lookup(cmd.Context(), rewriteOpts.submission, rewriteOpts.galley, rewriteOpts.file, rewriteOpts.locale)
	if err != nil {
		return err
	}
	body, err := st.ReadFileBytes(f)
	if err != nil {
		return err
	}
	deps, err := st.DependentFiles(cmd.Context(), f.ID, rewriteOpts.locale)
	if err != nil {
		return err
	}

	files := make([]jats.File, 0, len(deps))
	for _, d := range deps {
		files = append(files, jats.File{
			Name:     d.Name,
			URL:      urls.DownloadURL(d.SubmissionID, d.GalleyID, d.ID, d.Name, d.MIMEType),
			MIMEType: d.MIMEType,
		})
	}

	_, err = os.Stdout.Write(jats.Rewrite(body, jats.BuildIndex(files)))
	return err
}
