package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/config"
	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// Storage 任务与分析结果的 postgres 持久层
type Storage struct {
	db *sql.DB
}

// NewStorage 建立连接并初始化表结构
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// NewStorageWithDB 用既有连接创建持久层 (测试用)
func NewStorageWithDB(db *sql.DB) (*Storage, error) {
	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			model TEXT NOT NULL,
			search_queries TEXT,
			status TEXT NOT NULL,
			videos_found INTEGER DEFAULT 0,
			comments_collected INTEGER DEFAULT 0,
			videos_transcribed INTEGER DEFAULT 0,
			videos_analyzed INTEGER DEFAULT 0,
			progress TEXT,
			error TEXT,
			report_file TEXT,
			export_file TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to init jobs table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS video_results (
			id SERIAL PRIMARY KEY,
			job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			video_id TEXT NOT NULL,
			video_title TEXT,
			channel_name TEXT,
			sentiment TEXT,
			score INTEGER,
			strengths TEXT,
			weaknesses TEXT,
			verdict TEXT,
			has_transcript BOOLEAN DEFAULT FALSE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to init video_results table: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveJob 保存或更新任务快照
func (s *Storage) SaveJob(job dm.Job) error {
	_, err := s.db.Exec(`
		INSERT INTO jobs (id, company, model, search_queries, status,
			videos_found, comments_collected, videos_transcribed, videos_analyzed,
			progress, error, report_file, export_file, created_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			videos_found = EXCLUDED.videos_found,
			comments_collected = EXCLUDED.comments_collected,
			videos_transcribed = EXCLUDED.videos_transcribed,
			videos_analyzed = EXCLUDED.videos_analyzed,
			progress = EXCLUDED.progress,
			error = EXCLUDED.error,
			report_file = EXCLUDED.report_file,
			export_file = EXCLUDED.export_file,
			completed_at = EXCLUDED.completed_at
	`,
		job.ID, job.Product.Company, job.Product.Model,
		strings.Join(job.Product.SearchQueries, "\n"), string(job.Status),
		job.Counters.VideosFound, job.Counters.CommentsCollected,
		job.Counters.VideosTranscribed, job.Counters.VideosAnalyzed,
		job.Progress, job.Error, job.ReportFile, job.ExportFile,
		job.CreatedAt, job.CompletedAt,
	)
	return err
}

// GetJob 按 ID 读取任务
func (s *Storage) GetJob(id string) (dm.Job, error) {
	row := s.db.QueryRow(`
		SELECT id, company, model, search_queries, status,
			videos_found, comments_collected, videos_transcribed, videos_analyzed,
			progress, error, report_file, export_file, created_at, completed_at
		FROM jobs WHERE id = $1
	`, id)
	return scanJob(row)
}

// ListJobs 按创建时间倒序列出任务
func (s *Storage) ListJobs(limit int) ([]dm.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT id, company, model, search_queries, status,
			videos_found, comments_collected, videos_transcribed, videos_analyzed,
			progress, error, report_file, export_file, created_at, completed_at
		FROM jobs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []dm.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// DeleteJob 删除任务及其结果行
func (s *Storage) DeleteJob(id string) error {
	_, err := s.db.Exec(`DELETE FROM jobs WHERE id = $1`, id)
	return err
}

// VideoResult 持久化的单视频结果行
type VideoResult struct {
	JobID         string `json:"job_id"`
	VideoID       string `json:"video_id"`
	VideoTitle    string `json:"video_title"`
	ChannelName   string `json:"channel_name"`
	Sentiment     string `json:"sentiment"`
	Score         int    `json:"score"`
	Strengths     string `json:"strengths"`
	Weaknesses    string `json:"weaknesses"`
	Verdict       string `json:"verdict"`
	HasTranscript bool   `json:"has_transcript"`
}

// SaveResults 批量写入一个任务的分析结果
func (s *Storage) SaveResults(jobID string, candidates []dm.VideoCandidate, records map[string]dm.AnalysisRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO video_results (job_id, video_id, video_title, channel_name,
			sentiment, score, strengths, weaknesses, verdict, has_transcript)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, c := range candidates {
		r, ok := records[c.ID]
		if !ok {
			continue
		}
		_, err := stmt.Exec(jobID, c.ID, c.Title, c.Channel,
			string(r.Sentiment), r.Score,
			strings.Join(r.Strengths, "; "), strings.Join(r.Weaknesses, "; "),
			r.Verdict, r.Provenance.HasTranscript)
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				err = fmt.Errorf("%w: %v", err, rerr)
			}
			return err
		}
	}
	return tx.Commit()
}

// GetResults 读取一个任务的全部结果行
func (s *Storage) GetResults(jobID string) ([]VideoResult, error) {
	rows, err := s.db.Query(`
		SELECT job_id, video_id, video_title, channel_name,
			sentiment, score, strengths, weaknesses, verdict, has_transcript
		FROM video_results WHERE job_id = $1 ORDER BY id
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []VideoResult
	for rows.Next() {
		var r VideoResult
		if err := rows.Scan(&r.JobID, &r.VideoID, &r.VideoTitle, &r.ChannelName,
			&r.Sentiment, &r.Score, &r.Strengths, &r.Weaknesses, &r.Verdict, &r.HasTranscript); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (dm.Job, error) {
	var job dm.Job
	var queries, progress, errMsg, reportFile, exportFile sql.NullString
	var completedAt sql.NullTime
	var status string

	err := row.Scan(&job.ID, &job.Product.Company, &job.Product.Model, &queries, &status,
		&job.Counters.VideosFound, &job.Counters.CommentsCollected,
		&job.Counters.VideosTranscribed, &job.Counters.VideosAnalyzed,
		&progress, &errMsg, &reportFile, &exportFile, &job.CreatedAt, &completedAt)
	if err != nil {
		return dm.Job{}, err
	}

	if queries.Valid && queries.String != "" {
		job.Product.SearchQueries = strings.Split(queries.String, "\n")
	}
	job.Status = dm.JobStatus(status)
	job.Progress = progress.String
	job.Error = errMsg.String
	job.ReportFile = reportFile.String
	job.ExportFile = exportFile.String
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		job.CompletedAt = &t
	}
	job.CreatedAt = job.CreatedAt.UTC()
	return job, nil
}
