// quizbank.go

package session

import (
	"log"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// QuizBank 按顺序出题的题库，题目用完后 Current 返回nil
type QuizBank struct {
	quizzes []models.Quiz
	next    int
}

// NewQuizBank 创建题库，跳过格式不正确的题目
func NewQuizBank(quizzes []models.Quiz) *QuizBank {
	valid := make([]models.Quiz, 0, len(quizzes))
	for i := range quizzes {
		if err := quizzes[i].Validate(); err != nil {
			log.Printf("跳过第 %d 题: %v", i+1, err)
			continue
		}
		valid = append(valid, quizzes[i])
	}
	return &QuizBank{quizzes: valid}
}

// Current 当前题目
func (b *QuizBank) Current() *models.Quiz {
	if b == nil || b.next >= len(b.quizzes) {
		return nil
	}
	return &b.quizzes[b.next]
}

// Advance 进入下一题
func (b *QuizBank) Advance() {
	if b != nil && b.next < len(b.quizzes) {
		b.next++
	}
}

// Remaining 剩余题目数量
func (b *QuizBank) Remaining() int {
	if b == nil {
		return 0
	}
	return len(b.quizzes) - b.next
}
