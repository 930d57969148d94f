// quiz.go

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// QuizOptionCount 每道题的选项数
const QuizOptionCount = 4

// Quiz 外部生成的测验题（只读消费）
type Quiz struct {
	Question     string   `json:"question" msgpack:"question"`
	Options      []string `json:"options" msgpack:"options"`
	CorrectIndex int      `json:"correct_index" msgpack:"-"`
	Explanation  string   `json:"explanation,omitempty" msgpack:"-"`
}

// Validate 校验题目：4个选项，正确答案下标在[0,3]
func (q *Quiz) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("题干为空")
	}
	if len(q.Options) != QuizOptionCount {
		return fmt.Errorf("选项数量必须为%d，实际为%d", QuizOptionCount, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= QuizOptionCount {
		return fmt.Errorf("正确答案下标越界: %d", q.CorrectIndex)
	}
	return nil
}

// IsCorrect 判断作答是否正确
func (q *Quiz) IsCorrect(answer int) bool {
	return answer == q.CorrectIndex
}

// QuizSet 题库
type QuizSet struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Quizzes   []Quiz    `json:"quizzes"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate 校验题库标题和每一道题
func (s *QuizSet) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("题库标题为空")
	}
	if len(s.Quizzes) == 0 {
		return errors.New("题库没有题目")
	}
	for i := range s.Quizzes {
		if err := s.Quizzes[i].Validate(); err != nil {
			return fmt.Errorf("第 %d 题: %w", i+1, err)
		}
	}
	return nil
}

// QuizStats 答题统计
type QuizStats struct {
	Answered int `json:"answered" msgpack:"answered"`
	Correct  int `json:"correct" msgpack:"correct"`
}

// Accuracy 正确率(百分比)，未答题时为0
func (s QuizStats) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) * 100 / float64(s.Answered)
}

// UpgradeKind 升级项类型
type UpgradeKind string

const (
	UpgradeWeapon  UpgradeKind = "weapon"
	UpgradePassive UpgradeKind = "passive"
)

// UpgradeChoice 升级选项
type UpgradeChoice struct {
	Kind         UpgradeKind `json:"kind" msgpack:"kind"`
	ID           string      `json:"id" msgpack:"id"`
	Name         string      `json:"name" msgpack:"name"`
	IsNew        bool        `json:"is_new" msgpack:"is_new"`
	IsEvolution  bool        `json:"is_evolution" msgpack:"is_evolution"`
	Priority     int         `json:"priority" msgpack:"priority"`
	CurrentLevel int         `json:"current_level" msgpack:"current_level"`
	NextLevel    int         `json:"next_level" msgpack:"next_level"`
}

// LevelUpProposal 待确认的升级提案
type LevelUpProposal struct {
	Level   int             `json:"level" msgpack:"level"`
	Choices []UpgradeChoice `json:"choices" msgpack:"choices"`
	HasQuiz bool            `json:"has_quiz" msgpack:"has_quiz"`
}

// FindChoice 在提案中查找选项
func (p *LevelUpProposal) FindChoice(kind UpgradeKind, id string) (UpgradeChoice, bool) {
	for _, c := range p.Choices {
		if c.Kind == kind && c.ID == id {
			return c, true
		}
	}
	return UpgradeChoice{}, false
}
