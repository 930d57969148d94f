// quizsets.go

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// ErrQuizSetNotFound 题库不存在
var ErrQuizSetNotFound = errors.New("题库不存在")

// SaveQuizSet 校验并保存题库，ID为空时自动生成
func SaveQuizSet(ctx context.Context, set *models.QuizSet) error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("题库无效: %w", err)
	}
	if set.ID == "" {
		set.ID = uuid.New().String()
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now()
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quiz_sets (id, owner_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		set.ID, set.OwnerID, set.Title, set.CreatedAt,
	); err != nil {
		return fmt.Errorf("保存题库失败: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quiz_questions (quiz_set_id, position, question, options, correct_index, explanation)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("准备语句失败: %w", err)
	}
	defer stmt.Close()

	for i, q := range set.Quizzes {
		if _, err := stmt.ExecContext(ctx, set.ID, i, q.Question, pq.Array(q.Options), q.CorrectIndex, q.Explanation); err != nil {
			return fmt.Errorf("保存第 %d 题失败: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// LoadQuizSet 按ID加载题库及题目
func LoadQuizSet(ctx context.Context, id string) (*models.QuizSet, error) {
	if DB == nil {
		return nil, fmt.Errorf("数据库未初始化")
	}

	set := &models.QuizSet{ID: id}
	err := DB.QueryRowContext(ctx,
		`SELECT owner_id, title, created_at FROM quiz_sets WHERE id = $1`, id,
	).Scan(&set.OwnerID, &set.Title, &set.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuizSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询题库失败: %w", err)
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT question, options, correct_index, COALESCE(explanation, '')
		FROM quiz_questions
		WHERE quiz_set_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("查询题目失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q models.Quiz
		if err := rows.Scan(&q.Question, pq.Array(&q.Options), &q.CorrectIndex, &q.Explanation); err != nil {
			return nil, fmt.Errorf("读取题目失败: %w", err)
		}
		set.Quizzes = append(set.Quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// ListQuizSets 列出玩家上传的题库（不含题目），ownerID为0时列出全部
func ListQuizSets(ctx context.Context, ownerID int64, limit int) ([]models.QuizSet, error) {
	if DB == nil {
		return nil, fmt.Errorf("数据库未初始化")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT id, owner_id, title, created_at
		FROM quiz_sets
		WHERE $1 = 0 OR owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询题库列表失败: %w", err)
	}
	defer rows.Close()

	var sets []models.QuizSet
	for rows.Next() {
		var s models.QuizSet
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Title, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("读取题库失败: %w", err)
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}
