// Command ingest pushes local media files into the CMS the same way the
// admin UI does: presign against the backend, PUT the bytes straight to
// object storage, then commit the asset record.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vistudio/studio-cms/internal/uploader"
)

var (
	apiBase     string
	folder      string
	collection  string
	types       []string
	concurrency int64
	timeout     time.Duration
	title       string
	category    string
)

var rootCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Upload media files directly to object storage via the CMS presign API",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
	// Errors are reported once, by us.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&apiBase, "api", "http://localhost:8080", "base URL of the CMS backend")
	rootCmd.Flags().StringVar(&folder, "folder", "portfolio", "logical storage folder to upload into")
	rootCmd.Flags().StringVar(&collection, "collection", "portfolio", "asset collection to commit records into")
	rootCmd.Flags().StringSliceVar(&types, "types", []string{"image/", "video/"}, "allowed MIME types or prefixes")
	rootCmd.Flags().Int64Var(&concurrency, "concurrency", 4, "maximum parallel uploads")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 15*time.Minute, "per-file transfer timeout")
	rootCmd.Flags().StringVar(&title, "title", "", "title applied to every committed asset")
	rootCmd.Flags().StringVar(&category, "category", "", "category applied to every committed asset")
}

func runIngest(cmd *cobra.Command, args []string) error {
	base := strings.TrimRight(apiBase, "/")

	domainFields := map[string]any{}
	if title != "" {
		domainFields["title"] = title
	}
	if category != "" {
		domainFields["category"] = category
	}

	batch, err := uploader.NewBatch(uploader.Options{
		Folder:          folder,
		AllowedTypes:    types,
		Presign:         uploader.NewHTTPPresign(nil, base+"/api/v1/media/presign"),
		Commit:          uploader.NewHTTPCommit(nil, base+"/api/v1/assets/"+collection, domainFields),
		MaxConcurrent:   concurrency,
		TransferTimeout: timeout,
		OnChange: func(s uploader.Snapshot) {
			switch s.Status {
			case uploader.StatusDone:
				fmt.Printf("done      %s\n", s.FileName)
			case uploader.StatusError:
				fmt.Printf("error     %s: %s\n", s.FileName, s.Err)
			case uploader.StatusUploading:
				fmt.Printf("%3d%%      %s\n", s.Progress, s.FileName)
			}
		},
	})
	if err != nil {
		return err
	}

	files := make([]uploader.File, 0, len(args))
	for _, path := range args {
		f, err := fileFromPath(path)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	_, rejected := batch.AddFiles(files...)
	for _, r := range rejected {
		fmt.Printf("skipped   %s\n", r.Error())
	}

	res := batch.UploadAll(cmd.Context())
	fmt.Printf("uploaded %d, failed %d, skipped %d\n", res.Done, res.Failed, len(rejected))
	if res.Failed > 0 {
		return fmt.Errorf("%d upload(s) failed", res.Failed)
	}
	return nil
}

func fileFromPath(path string) (uploader.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return uploader.File{}, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return uploader.File{
		Source: uploader.Source{
			Name:        filepath.Base(path),
			ContentType: contentType,
			Size:        info.Size(),
			Open: func() (io.ReadCloser, error) {
				f, err := os.Open(path)
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		},
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}
