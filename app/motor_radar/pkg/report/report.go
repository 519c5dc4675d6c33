package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-pdf/fpdf"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/logger"
	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// Outputs 一次报告生成的产物路径
type Outputs struct {
	ReportFile string // PDF 文档报告
	ExportFile string // CSV 扁平导出
}

// Generator 报告生成阶段
// 唯一会触网的部分是可选的 LLM 执行摘要，失败时降级为静态文案
type Generator struct {
	outputDir string
	fontPath  string // UTF-8 TTF 字体，为空时退回内置字体
	chatModel model.ChatModel
	limiter   *rate.Limiter
}

// NewGenerator 创建报告生成器
func NewGenerator(outputDir, fontPath string, cm model.ChatModel, limiter *rate.Limiter) *Generator {
	return &Generator{outputDir: outputDir, fontPath: fontPath, chatModel: cm, limiter: limiter}
}

// Generate 生成文档报告与扁平导出
// 记录集为空时仍产出带"无结果"章节的有效文档
func (g *Generator) Generate(ctx context.Context, product dm.Product, candidates []dm.VideoCandidate, records map[string]dm.AnalysisRecord) (Outputs, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return Outputs{}, fmt.Errorf("failed to create output dir: %w", err)
	}

	ordered := orderRecords(candidates, records)
	summary := Aggregate(ordered)

	narrative := g.narrative(ctx, product, summary)

	id := product.Identifier()
	reportPath := filepath.Join(g.outputDir, id+"_report.pdf")
	exportPath := filepath.Join(g.outputDir, id+"_analysis.csv")

	if err := g.writePDF(reportPath, product, summary, narrative, candidates, ordered); err != nil {
		return Outputs{}, fmt.Errorf("write pdf report: %w", err)
	}
	if err := g.writeCSV(exportPath, candidates, ordered); err != nil {
		return Outputs{}, fmt.Errorf("write csv export: %w", err)
	}

	return Outputs{
		ReportFile: filepath.Base(reportPath),
		ExportFile: filepath.Base(exportPath),
	}, nil
}

// orderRecords 按候选顺序展开记录，保证输出确定性
func orderRecords(candidates []dm.VideoCandidate, records map[string]dm.AnalysisRecord) []dm.AnalysisRecord {
	ordered := make([]dm.AnalysisRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, c := range candidates {
		if r, ok := records[c.ID]; ok {
			ordered = append(ordered, r)
			seen[c.ID] = struct{}{}
		}
	}
	// 不在候选列表中的记录兜底排在末尾
	var rest []string
	for id := range records {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		ordered = append(ordered, records[id])
	}
	return ordered
}

// narrative 生成执行摘要，LLM 不可用或失败时使用静态文案
func (g *Generator) narrative(ctx context.Context, product dm.Product, summary Summary) string {
	fallback := fmt.Sprintf("%s %s 共分析 %d 个视频：正面 %d，中立 %d，负面 %d，平均得分 %d。",
		product.Company, product.Model, summary.Total,
		summary.BySentiment[dm.SentimentPositive],
		summary.BySentiment[dm.SentimentNeutral],
		summary.BySentiment[dm.SentimentNegative],
		summary.AvgScore)

	if g.chatModel == nil || summary.Total == 0 {
		return fallback
	}

	prompt := fmt.Sprintf(`你是一个资深汽车市场分析师。以下是 %s %s 的 YouTube 评测统计数据：
%s
主要竞品：%s

请用 2-3 句话写一段执行摘要，概括整体口碑。只输出摘要正文，不要任何标记。`,
		product.Company, product.Model, summary.Line(), strings.Join(summary.Competitors, ", "))

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fallback
		}
	}
	resp, err := g.chatModel.Generate(ctx, []*schema.Message{
		{Role: schema.User, Content: prompt},
	})
	if err != nil {
		logger.Log.Warnf("执行摘要生成失败，使用静态文案: %v", err)
		return fallback
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return fallback
	}
	return text
}

// writePDF 渲染文档报告
func (g *Generator) writePDF(path string, product dm.Product, summary Summary, narrative string, candidates []dm.VideoCandidate, records []dm.AnalysisRecord) error {
	pdf := fpdf.New("P", "mm", "A4", "")

	font := "Helvetica"
	if g.fontPath != "" {
		pdf.AddUTF8Font("report", "", g.fontPath)
		font = "report"
	}

	pdf.AddPage()
	pdf.SetFont(font, "", 18)
	pdf.CellFormat(0, 12, fmt.Sprintf("%s %s - YouTube Market Report", product.Company, product.Model), "", 1, "L", false, 0, "")

	pdf.SetFont(font, "", 10)
	pdf.CellFormat(0, 6, "Generated at "+time.Now().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(font, "", 13)
	pdf.CellFormat(0, 8, "Executive Summary", "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 10)
	pdf.MultiCell(0, 5, narrative, "", "L", false)
	pdf.Ln(2)

	if summary.Total == 0 {
		pdf.SetFont(font, "", 13)
		pdf.CellFormat(0, 8, "No Results", "", 1, "L", false, 0, "")
		pdf.SetFont(font, "", 10)
		pdf.MultiCell(0, 5, "No analyzable videos were found for this job. Try broader search queries or a wider date range.", "", "L", false)
		return pdf.OutputFileAndClose(path)
	}

	pdf.SetFont(font, "", 13)
	pdf.CellFormat(0, 8, "Sentiment Breakdown", "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Positive: %d    Neutral: %d    Negative: %d    Unknown: %d    Average score: %d",
		summary.BySentiment[dm.SentimentPositive],
		summary.BySentiment[dm.SentimentNeutral],
		summary.BySentiment[dm.SentimentNegative],
		summary.BySentiment[dm.SentimentUnknown],
		summary.AvgScore), "", 1, "L", false, 0, "")
	if len(summary.Competitors) > 0 {
		pdf.CellFormat(0, 5, "Competitors mentioned: "+strings.Join(summary.Competitors, ", "), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	titles := make(map[string]string, len(candidates))
	for _, c := range candidates {
		titles[c.ID] = c.Title
	}

	pdf.SetFont(font, "", 13)
	pdf.CellFormat(0, 8, "Per-Video Findings", "", 1, "L", false, 0, "")
	for _, r := range records {
		pdf.SetFont(font, "", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%s [%s, %d]", titles[r.VideoID], r.Sentiment, r.Score), "", "L", false)
		pdf.SetFont(font, "", 9)
		if len(r.Strengths) > 0 {
			pdf.MultiCell(0, 5, "+ "+strings.Join(r.Strengths, "; "), "", "L", false)
		}
		if len(r.Weaknesses) > 0 {
			pdf.MultiCell(0, 5, "- "+strings.Join(r.Weaknesses, "; "), "", "L", false)
		}
		if r.Verdict != "" {
			pdf.MultiCell(0, 5, r.Verdict, "", "L", false)
		}
		pdf.Ln(2)
	}

	return pdf.OutputFileAndClose(path)
}

// csvHeader 扁平导出列，每条记录一行
var csvHeader = []string{
	"video_id", "url", "title", "channel", "views",
	"sentiment", "score", "strengths", "weaknesses",
	"competitors", "comparisons", "verdict",
	"has_comments", "has_transcript", "degraded",
}

// writeCSV 写出扁平导出文件
func (g *Generator) writeCSV(path string, candidates []dm.VideoCandidate, records []dm.AnalysisRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	byID := make(map[string]dm.VideoCandidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	for _, r := range records {
		c := byID[r.VideoID]
		var compNames, compSummaries []string
		for _, cm := range r.Competitors {
			compNames = append(compNames, cm.Name)
			compSummaries = append(compSummaries, cm.Comparison)
		}
		row := []string{
			r.VideoID,
			c.URL,
			c.Title,
			c.Channel,
			strconv.FormatInt(c.Views, 10),
			string(r.Sentiment),
			strconv.Itoa(r.Score),
			strings.Join(r.Strengths, "; "),
			strings.Join(r.Weaknesses, "; "),
			strings.Join(compNames, "; "),
			strings.Join(compSummaries, " | "),
			r.Verdict,
			strconv.FormatBool(r.Provenance.HasComments),
			strconv.FormatBool(r.Provenance.HasTranscript),
			strconv.FormatBool(r.Provenance.Degraded),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
