package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roboco-io/mwaw2md/internal/container"
	"github.com/roboco-io/mwaw2md/internal/dispatch"
	"github.com/roboco-io/mwaw2md/internal/ir"
	"github.com/roboco-io/mwaw2md/internal/parser"
	"github.com/roboco-io/mwaw2md/internal/sink"
	"github.com/spf13/cobra"
)

var (
	decodeEncoding   string
	decodePageBreaks bool
	decodeExtract    bool
	decodeImagesDir  string
	decodeFrom       string
)

// addDecodeFlags adds the flags that override the decode section of the
// configuration.
func addDecodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&decodeEncoding, "encoding", "", "기본 8비트 코드 페이지 (macintosh, windows-1252)")
	cmd.Flags().BoolVar(&decodePageBreaks, "page-breaks", false, "Write 페이지 테이블을 페이지 나눔으로 출력")
	cmd.Flags().BoolVar(&decodeExtract, "extract-images", false, "이미지 추출 활성화")
	cmd.Flags().StringVar(&decodeImagesDir, "images-dir", "", "추출된 이미지 저장 디렉토리")
	cmd.Flags().StringVar(&decodeFrom, "from", "", "입력 형식 강제 (mswrite, works, mactext)")
}

// parserOptions merges the configuration with the flags set on cmd.
func parserOptions(cmd *cobra.Command) parser.Options {
	opts := parser.DefaultOptions()
	opts.DefaultEncoding = cfg.Decode.DefaultEncoding
	opts.PageTableBreaks = cfg.Decode.PageTableBreaks
	opts.ExtractImages = cfg.Decode.ExtractImages
	opts.ImageDir = cfg.Decode.ImageDir
	opts.Logger = logger

	flags := cmd.Flags()
	if flags.Changed("encoding") {
		opts.DefaultEncoding = decodeEncoding
	}
	if flags.Changed("page-breaks") {
		opts.PageTableBreaks = decodePageBreaks
	}
	if flags.Changed("extract-images") {
		opts.ExtractImages = decodeExtract
	}
	if flags.Changed("images-dir") {
		opts.ImageDir = decodeImagesDir
	}
	return opts
}

// openInput reads path, or standard input for "-".
func openInput(cmd *cobra.Command, path string) (*container.File, error) {
	if path == "-" {
		return container.Read("stdin", cmd.InOrStdin())
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("파일을 찾을 수 없습니다: %s", path)
	}
	return container.Open(path)
}

// decodeTo runs the parser for the input at path into s.
func decodeTo(cmd *cobra.Command, path string, s sink.Sink, opts parser.Options) (*container.File, *dispatch.Report, error) {
	f, err := openInput(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	if decodeFrom != "" {
		format := parser.ParseFormat(decodeFrom)
		if format == parser.FormatUnknown {
			return f, nil, fmt.Errorf("알 수 없는 형식: %s", decodeFrom)
		}
		rep, err := dispatch.DecodeAs(f, format, s, opts)
		return f, rep, err
	}
	rep, err := dispatch.Decode(f, s, opts)
	return f, rep, err
}

// decodeDocument decodes the input at path into an IR document and
// extracts its images when asked to.
func decodeDocument(cmd *cobra.Command, path string) (*ir.Document, *dispatch.Report, error) {
	opts := parserOptions(cmd)
	b := ir.NewBuilder()
	f, rep, err := decodeTo(cmd, path, b, opts)
	if err != nil {
		return nil, rep, err
	}
	if err := b.Err(); err != nil {
		logger.Warn("sub-document replay failed", "error", err)
	}

	doc := b.Document()
	doc.Metadata = ir.Metadata{
		Title:   strings.TrimSuffix(f.Name, filepath.Ext(f.Name)),
		Format:  rep.Format.String(),
		Type:    f.Type,
		Creator: f.Creator,
	}
	logger.Info("decoded", "file", f.Name, "format", doc.Metadata.Format,
		"blocks", len(doc.Content), "notes", len(rep.Notes), "unparsed", len(rep.Unparsed))

	if opts.ExtractImages {
		n, err := doc.ExtractImages(opts.ImageDir)
		if err != nil {
			return nil, rep, err
		}
		logger.Info("images extracted", "dir", opts.ImageDir, "count", n)
	}
	return doc, rep, nil
}
