package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/roboco-io/mwaw2md/internal/ir"
	"github.com/spf13/cobra"
)

var (
	convertOutput  string
	convertFormat  string
	convertVerbose bool
	convertQuiet   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "문서를 Markdown으로 변환",
	Long: `Write, Works, Mac 텍스트 문서를 Markdown으로 변환합니다.

파일 경로 대신 - 를 주면 표준 입력을 읽습니다.

환경 변수:
  MWAW2MD_ENCODING=xxx   기본 코드 페이지 (macintosh, windows-1252)
  MWAW2MD_LOG_LEVEL=xxx  로그 레벨

예시:
  mwaw2md convert memo.wri
  mwaw2md convert memo.wri -o memo.md
  mwaw2md convert letter.wps --format json
  mwaw2md convert memo.wri --extract-images --images-dir ./images
  cat memo.wri | mwaw2md convert -`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "출력 파일 경로 (기본: stdout)")
	convertCmd.Flags().StringVar(&convertFormat, "format", "", "출력 형식 (markdown, json, text)")
	convertCmd.Flags().BoolVarP(&convertVerbose, "verbose", "v", false, "상세 출력")
	convertCmd.Flags().BoolVarP(&convertQuiet, "quiet", "q", false, "조용한 모드")
	addDecodeFlags(convertCmd)

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	format := cfg.Output.Format
	if convertFormat != "" {
		format = convertFormat
	}

	doc, rep, err := decodeDocument(cmd, inputPath)
	if err != nil {
		return fmt.Errorf("문서 파싱 실패: %w", err)
	}

	if !convertQuiet && convertVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "입력 파일: %s\n", inputPath)
		fmt.Fprintf(cmd.ErrOrStderr(), "파일 형식: %s\n", rep.Format)
		fmt.Fprintf(cmd.ErrOrStderr(), "파싱 완료: %d 블록, 진단 %d개\n", len(doc.Content), len(rep.Notes))
	}

	var output string
	if format == "markdown" {
		output = convertToBasicMarkdown(doc)
	} else {
		output, err = formatOutput(doc, format, cfg.Output.Pretty)
		if err != nil {
			return fmt.Errorf("출력 포맷팅 실패: %w", err)
		}
	}

	// Write output
	if convertOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	} else {
		if err := os.WriteFile(convertOutput, []byte(output), 0644); err != nil {
			return fmt.Errorf("파일 저장 실패: %w", err)
		}
		if !convertQuiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "변환 완료: %s\n", convertOutput)
		}
	}

	return nil
}

func convertToBasicMarkdown(doc *ir.Document) string {
	var sb strings.Builder

	// Metadata as YAML front matter (optional)
	if doc.Metadata.Title != "" || doc.Metadata.Format != "" {
		sb.WriteString("---\n")
		if doc.Metadata.Title != "" {
			sb.WriteString(fmt.Sprintf("title: %q\n", doc.Metadata.Title))
		}
		if doc.Metadata.Format != "" {
			sb.WriteString(fmt.Sprintf("source_format: %s\n", doc.Metadata.Format))
		}
		sb.WriteString("---\n\n")
	}

	// 머리글/바닥글은 주석으로
	writeMarkdownNotes(&sb, "header", doc.Headers)

	// Content
	for _, block := range doc.Content {
		switch block.Type {
		case ir.BlockTypeParagraph:
			if block.Paragraph != nil {
				writeMarkdownParagraph(&sb, block.Paragraph)
			}
		case ir.BlockTypeTable:
			if block.Table != nil {
				writeMarkdownTable(&sb, block.Table)
			}
		case ir.BlockTypeImage:
			if block.Image != nil {
				writeMarkdownImage(&sb, block.Image)
			}
		case ir.BlockTypePageBreak:
			sb.WriteString("---\n\n")
		}
	}

	writeMarkdownNotes(&sb, "footer", doc.Footers)

	if !doc.Footnotes.IsEmpty() {
		for i, item := range doc.Footnotes.Items {
			sb.WriteString(fmt.Sprintf("[^%d]: %s\n", doc.Footnotes.Start+i, item.Text))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeMarkdownNotes(sb *strings.Builder, kind string, blocks []ir.Block) {
	for _, b := range blocks {
		if b.Type == ir.BlockTypeParagraph && b.Paragraph != nil {
			text := strings.TrimSpace(b.Paragraph.Text)
			sb.WriteString(fmt.Sprintf("<!-- %s: %s -->\n\n", kind, strings.ReplaceAll(text, "--", "- -")))
		}
	}
}

func writeMarkdownParagraph(sb *strings.Builder, p *ir.Paragraph) {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return
	}

	// Handle headings
	if p.Style.HeadingLevel > 0 && p.Style.HeadingLevel <= 6 {
		prefix := strings.Repeat("#", p.Style.HeadingLevel)
		sb.WriteString(fmt.Sprintf("%s %s\n\n", prefix, text))
		return
	}

	text = strings.TrimSpace(inlineMarkdown(p))
	text = strings.ReplaceAll(text, "\n", "  \n")
	if p.Style.IsQuote {
		text = "> " + strings.ReplaceAll(text, "\n", "\n> ")
	}
	sb.WriteString(text + "\n\n")
}

// inlineMarkdown renders the runs of p with emphasis, code spans, links
// and footnote references.
func inlineMarkdown(p *ir.Paragraph) string {
	if len(p.Runs) == 0 {
		return p.Text
	}
	var sb strings.Builder
	for _, r := range p.Runs {
		if r.Note > 0 {
			sb.WriteString(fmt.Sprintf("[^%d]", r.Note))
			continue
		}
		sb.WriteString(styleRun(r.Text, r.Style))
	}
	return sb.String()
}

func styleRun(text string, st ir.TextStyle) string {
	core := strings.TrimSpace(text)
	if core == "" {
		return text
	}
	lead := text[:strings.Index(text, core)]
	trail := text[len(lead)+len(core):]

	if st.Code {
		core = "`" + core + "`"
	}
	switch {
	case st.Bold && st.Italic:
		core = "***" + core + "***"
	case st.Bold:
		core = "**" + core + "**"
	case st.Italic:
		core = "*" + core + "*"
	}
	if st.Strikethrough {
		core = "~~" + core + "~~"
	}
	if st.Link != "" {
		core = "[" + core + "](" + st.Link + ")"
	}
	return lead + core + trail
}

func writeMarkdownTable(sb *strings.Builder, t *ir.TableBlock) {
	if len(t.Cells) == 0 {
		return
	}

	// Write rows
	for i, row := range t.Cells {
		sb.WriteString("|")
		for _, cell := range row {
			text := strings.ReplaceAll(cell.Text, "\n", " ")
			text = strings.ReplaceAll(text, "|", "\\|")
			sb.WriteString(fmt.Sprintf(" %s |", text))
		}
		sb.WriteString("\n")

		// Write separator after header row
		if i == 0 {
			sb.WriteString("|")
			for range row {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func writeMarkdownImage(sb *strings.Builder, img *ir.ImageBlock) {
	alt := img.Alt
	if alt == "" {
		alt = img.ID
	}
	path := img.Path
	if path == "" {
		path = img.FileName()
	}
	sb.WriteString(fmt.Sprintf("![%s](%s)\n\n", alt, path))
}
