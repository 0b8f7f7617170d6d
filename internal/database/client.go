package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"photo-enhance-backend/internal/models"
)

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) CreateJob(jobID, userID uuid.UUID, mode, model, outputFormat string) (*models.Job, error) {
	var job models.Job
	err := c.db.QueryRow(`
		INSERT INTO jobs (id, user_id, mode, model, output_format, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, mode, model, output_format, process_id, status, progress, error_message, created_at, updated_at
	`, jobID, userID, mode, model, outputFormat, "submitted").Scan(
		&job.ID, &job.UserID, &job.Mode, &job.Model, &job.OutputFormat,
		&job.ProcessID, &job.Status, &job.Progress, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return &job, nil
}

func (c *Client) GetJob(jobID, userID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := c.db.QueryRow(`
		SELECT id, user_id, mode, model, output_format, process_id, status, progress, error_message, created_at, updated_at
		FROM jobs
		WHERE id = $1 AND user_id = $2
	`, jobID, userID).Scan(
		&job.ID, &job.UserID, &job.Mode, &job.Model, &job.OutputFormat,
		&job.ProcessID, &job.Status, &job.Progress, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func (c *Client) GetJobByProcessID(processID string, userID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := c.db.QueryRow(`
		SELECT id, user_id, mode, model, output_format, process_id, status, progress, error_message, created_at, updated_at
		FROM jobs
		WHERE process_id = $1 AND user_id = $2
	`, processID, userID).Scan(
		&job.ID, &job.UserID, &job.Mode, &job.Model, &job.OutputFormat,
		&job.ProcessID, &job.Status, &job.Progress, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func (c *Client) ListJobs(userID uuid.UUID) ([]models.Job, error) {
	rows, err := c.db.Query(`
		SELECT id, user_id, mode, model, output_format, process_id, status, progress, error_message, created_at, updated_at
		FROM jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		err := rows.Scan(
			&job.ID, &job.UserID, &job.Mode, &job.Model, &job.OutputFormat,
			&job.ProcessID, &job.Status, &job.Progress, &job.ErrorMessage,
			&job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (c *Client) SetJobProcessID(jobID uuid.UUID, processID string) error {
	_, err := c.db.Exec(`
		UPDATE jobs
		SET process_id = $1, status = 'processing'
		WHERE id = $2
	`, processID, jobID)
	return err
}

func (c *Client) UpdateJobStatus(jobID uuid.UUID, status string, progress int) error {
	_, err := c.db.Exec(`
		UPDATE jobs
		SET status = $1, progress = $2
		WHERE id = $3
	`, status, progress, jobID)
	return err
}

func (c *Client) UpdateJobError(jobID uuid.UUID, errorMsg string) error {
	_, err := c.db.Exec(`
		UPDATE jobs
		SET status = 'failed', error_message = $1
		WHERE id = $2
	`, errorMsg, jobID)
	return err
}

func (c *Client) CreateJobFile(file *models.JobFile) error {
	_, err := c.db.Exec(`
		INSERT INTO job_files (id, job_id, user_id, filename, storage_path, storage_url, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, file.ID, file.JobID, file.UserID, file.Filename, file.StoragePath,
		file.StorageURL, file.FileSize, file.MimeType)
	return err
}

func (c *Client) GetJobFiles(jobID, userID uuid.UUID) ([]models.JobFile, error) {
	rows, err := c.db.Query(`
		SELECT id, job_id, user_id, filename, storage_path, storage_url, file_size, mime_type, created_at
		FROM job_files
		WHERE job_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`, jobID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job files: %w", err)
	}
	defer rows.Close()

	var files []models.JobFile
	for rows.Next() {
		var file models.JobFile
		err := rows.Scan(
			&file.ID, &file.JobID, &file.UserID, &file.Filename,
			&file.StoragePath, &file.StorageURL, &file.FileSize,
			&file.MimeType, &file.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job file: %w", err)
		}
		files = append(files, file)
	}

	return files, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}
