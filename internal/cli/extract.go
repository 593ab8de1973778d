package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/roboco-io/mwaw2md/internal/ir"
	"github.com/spf13/cobra"
)

var (
	extractOutput      string
	extractFormat      string
	extractPrettyPrint bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "문서에서 IR(중간 표현) 추출",
	Long: `문서를 파싱하여 IR(Intermediate Representation)을 추출합니다.

Markdown 렌더링 없이 구조화된 데이터를 출력합니다.
출력 형식은 JSON 또는 텍스트(요약)를 지원합니다.

예시:
  mwaw2md extract memo.wri
  mwaw2md extract memo.wri -o output.json
  mwaw2md extract memo.wri --format text
  mwaw2md extract memo.wri --extract-images --images-dir ./images`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "출력 파일 경로 (기본: stdout)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "json", "출력 형식 (json, text)")
	extractCmd.Flags().BoolVar(&extractPrettyPrint, "pretty", true, "JSON 들여쓰기 적용")
	addDecodeFlags(extractCmd)

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	// Parse document
	doc, _, err := decodeDocument(cmd, inputPath)
	if err != nil {
		return fmt.Errorf("문서 파싱 실패: %w", err)
	}

	// Format output
	output, err := formatOutput(doc, extractFormat, extractPrettyPrint)
	if err != nil {
		return fmt.Errorf("출력 포맷팅 실패: %w", err)
	}

	// Write output
	if extractOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	} else {
		if err := os.WriteFile(extractOutput, []byte(output), 0644); err != nil {
			return fmt.Errorf("파일 저장 실패: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "IR 추출 완료: %s\n", extractOutput)
	}

	return nil
}

func formatOutput(doc *ir.Document, format string, pretty bool) (string, error) {
	switch format {
	case "json":
		var data []byte
		var err error
		if pretty {
			data, err = json.MarshalIndent(doc, "", "  ")
		} else {
			data, err = json.Marshal(doc)
		}
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "text":
		return formatAsText(doc), nil

	default:
		return "", fmt.Errorf("지원하지 않는 출력 형식: %s", format)
	}
}

func formatAsText(doc *ir.Document) string {
	var sb strings.Builder

	// Metadata
	if doc.Metadata.Title != "" {
		sb.WriteString(fmt.Sprintf("제목: %s\n", doc.Metadata.Title))
	}
	if doc.Metadata.Format != "" {
		sb.WriteString(fmt.Sprintf("형식: %s\n", doc.Metadata.Format))
	}
	if sb.Len() > 0 {
		sb.WriteString("\n---\n\n")
	}

	// Content
	for _, block := range doc.Content {
		switch block.Type {
		case ir.BlockTypeParagraph:
			if block.Paragraph != nil {
				sb.WriteString(block.Paragraph.Text + "\n\n")
			}
		case ir.BlockTypeTable:
			if block.Table != nil {
				sb.WriteString(formatTableAsText(block.Table) + "\n")
			}
		case ir.BlockTypeImage:
			if block.Image != nil {
				alt := block.Image.Alt
				if alt == "" {
					alt = block.Image.ID
				}
				sb.WriteString(fmt.Sprintf("[이미지: %s]\n\n", alt))
			}
		case ir.BlockTypePageBreak:
			sb.WriteString("\f\n")
		}
	}

	if !doc.Footnotes.IsEmpty() {
		sb.WriteString(formatListAsText(doc.Footnotes))
	}

	return sb.String()
}

func formatTableAsText(table *ir.TableBlock) string {
	var sb strings.Builder
	for _, row := range table.Cells {
		for j, cell := range row {
			if j > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(cell.Text)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatListAsText(list *ir.ListBlock) string {
	var sb strings.Builder
	for i, item := range list.Items {
		prefix := "- "
		if list.Ordered {
			prefix = fmt.Sprintf("[%d] ", list.Start+i)
		}
		sb.WriteString(prefix + item.Text + "\n")
	}
	return sb.String()
}
