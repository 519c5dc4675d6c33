package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

func testInputs() ([]dm.VideoCandidate, map[string]dm.AnalysisRecord) {
	candidates := []dm.VideoCandidate{
		{ID: "v1", Title: "Scenic E-Tech review", Channel: "CarTV", Views: 1200},
		{ID: "v2", Title: "Scenic road test", Channel: "AutoLab", Views: 800},
	}
	records := map[string]dm.AnalysisRecord{
		"v1": {
			VideoID:    "v1",
			Sentiment:  dm.SentimentPositive,
			Score:      82,
			Strengths:  []string{"ride quality"},
			Weaknesses: []string{"price"},
			Verdict:    "solid EV choice",
			Provenance: dm.Provenance{HasComments: true, HasTranscript: true},
		},
		"v2": {
			VideoID:   "v2",
			Sentiment: dm.SentimentNeutral,
			Score:     55,
			Verdict:   "average",
		},
	}
	return candidates, records
}

// 字体路径必须传到 PDF 渲染层，文件缺失时 Generate 返回错误
func TestGenerate_MissingFontFileFails(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, filepath.Join(dir, "missing.ttf"), nil, nil)

	candidates, records := testInputs()
	_, err := g.Generate(context.Background(), dm.Product{Company: "Renault", Model: "Scenic"}, candidates, records)
	require.Error(t, err)
}

func TestGenerate_ProducesBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "", nil, nil)
	product := dm.Product{Company: "Renault", Model: "Scenic"}

	candidates, records := testInputs()
	out, err := g.Generate(context.Background(), product, candidates, records)
	require.NoError(t, err)

	assert.Equal(t, "Renault_Scenic_report.pdf", out.ReportFile)
	assert.Equal(t, "Renault_Scenic_analysis.csv", out.ExportFile)

	pdfInfo, err := os.Stat(filepath.Join(dir, out.ReportFile))
	require.NoError(t, err)
	assert.Greater(t, pdfInfo.Size(), int64(0))

	f, err := os.Open(filepath.Join(dir, out.ExportFile))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // 表头 + 两行数据
	assert.Equal(t, "video_id", rows[0][0])
	assert.Equal(t, "v1", rows[1][0])
	assert.Equal(t, "v2", rows[2][0])
}

func TestGenerate_Idempotent(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "", nil, nil)
	product := dm.Product{Company: "Renault", Model: "Scenic"}
	candidates, records := testInputs()

	first, err := g.Generate(context.Background(), product, candidates, records)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), product, candidates, records)
	require.NoError(t, err)

	// 重跑覆盖同名产物，不产生新文件
	assert.Equal(t, first, second)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGenerate_EmptyRecordsStillValid(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "", nil, nil)
	product := dm.Product{Company: "Renault", Model: "Scenic"}

	out, err := g.Generate(context.Background(), product, nil, map[string]dm.AnalysisRecord{})
	require.NoError(t, err)

	pdfInfo, err := os.Stat(filepath.Join(dir, out.ReportFile))
	require.NoError(t, err)
	assert.Greater(t, pdfInfo.Size(), int64(0))

	f, err := os.Open(filepath.Join(dir, out.ExportFile))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1) // 只有表头
}

func TestOrderRecords_FollowsCandidateOrder(t *testing.T) {
	candidates := []dm.VideoCandidate{{ID: "b"}, {ID: "a"}}
	records := map[string]dm.AnalysisRecord{
		"a": {VideoID: "a"},
		"b": {VideoID: "b"},
		"z": {VideoID: "z"}, // 不在候选列表中
	}

	ordered := orderRecords(candidates, records)
	require.Len(t, ordered, 3)
	assert.Equal(t, "b", ordered[0].VideoID)
	assert.Equal(t, "a", ordered[1].VideoID)
	assert.Equal(t, "z", ordered[2].VideoID)
}
