// runs.go

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// SaveRun 保存一局对局记录，并在同一事务中更新玩家累计战绩
func SaveRun(ctx context.Context, rec *models.RunRecord) error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	var quizSetID sql.NullString
	if rec.QuizSetID != "" {
		quizSetID = sql.NullString{String: rec.QuizSetID, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO survivor_runs
			(id, session_id, player_id, quiz_set_id, score, level, wave, kills,
			 survival_time, quiz_answered, quiz_correct, died, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.SessionID, rec.PlayerID, quizSetID, rec.Score, rec.Level, rec.Wave, rec.Kills,
		rec.SurvivalTime, rec.Quiz.Answered, rec.Quiz.Correct, rec.Died, rec.StartTime, rec.EndTime,
	)
	if err != nil {
		return fmt.Errorf("保存对局记录失败: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE players SET
			best_score = GREATEST(best_score, $2),
			best_survival = GREATEST(best_survival, $3),
			total_kills = total_kills + $4,
			total_runs = total_runs + 1,
			total_answered = total_answered + $5,
			total_correct = total_correct + $6,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`,
		rec.PlayerID, rec.Score, rec.SurvivalTime, rec.Kills, rec.Quiz.Answered, rec.Quiz.Correct,
	)
	if err != nil {
		return fmt.Errorf("更新玩家战绩失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// RecentRuns 查询玩家最近的对局记录
func RecentRuns(ctx context.Context, playerID int64, limit int) ([]models.RunRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("数据库未初始化")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT id, session_id, player_id, COALESCE(quiz_set_id, ''), score, level, wave, kills,
		       survival_time, quiz_answered, quiz_correct, died, start_time, end_time
		FROM survivor_runs
		WHERE player_id = $1
		ORDER BY end_time DESC
		LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询对局记录失败: %w", err)
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		var r models.RunRecord
		if err := rows.Scan(
			&r.ID, &r.SessionID, &r.PlayerID, &r.QuizSetID, &r.Score, &r.Level, &r.Wave, &r.Kills,
			&r.SurvivalTime, &r.Quiz.Answered, &r.Quiz.Correct, &r.Died, &r.StartTime, &r.EndTime,
		); err != nil {
			return nil, fmt.Errorf("读取对局记录失败: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
