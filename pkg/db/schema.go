// schema.go

package db

// 统一的数据库表结构定义

// CreateAllTablesSQL 创建所有表的SQL语句
const CreateAllTablesSQL = `
-- 玩家表
CREATE TABLE IF NOT EXISTS players (
    id SERIAL PRIMARY KEY,
    username VARCHAR(50) UNIQUE NOT NULL,
    password VARCHAR(100) NOT NULL,
    email VARCHAR(100) UNIQUE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,

    -- 生存战绩
    best_score INT DEFAULT 0,
    best_survival DOUBLE PRECISION DEFAULT 0,
    total_kills INT DEFAULT 0,
    total_runs INT DEFAULT 0,
    total_answered INT DEFAULT 0,
    total_correct INT DEFAULT 0
);

-- 题库表
CREATE TABLE IF NOT EXISTS quiz_sets (
    id VARCHAR(50) PRIMARY KEY,
    owner_id BIGINT REFERENCES players(id) ON DELETE CASCADE,
    title VARCHAR(200) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

-- 题目表
CREATE TABLE IF NOT EXISTS quiz_questions (
    quiz_set_id VARCHAR(50) REFERENCES quiz_sets(id) ON DELETE CASCADE,
    position INT NOT NULL,
    question TEXT NOT NULL,
    options TEXT[] NOT NULL,
    correct_index INT NOT NULL CHECK (correct_index BETWEEN 0 AND 3),
    explanation TEXT DEFAULT '',
    PRIMARY KEY (quiz_set_id, position)
);

-- 生存对局记录表
CREATE TABLE IF NOT EXISTS survivor_runs (
    id VARCHAR(50) PRIMARY KEY,
    session_id VARCHAR(50) NOT NULL,
    player_id BIGINT REFERENCES players(id) ON DELETE CASCADE,
    quiz_set_id VARCHAR(50) REFERENCES quiz_sets(id) ON DELETE SET NULL,
    score INT DEFAULT 0,
    level INT DEFAULT 1,
    wave INT DEFAULT 1,
    kills INT DEFAULT 0,
    survival_time DOUBLE PRECISION DEFAULT 0,
    quiz_answered INT DEFAULT 0,
    quiz_correct INT DEFAULT 0,
    died BOOLEAN DEFAULT false,
    start_time TIMESTAMP WITH TIME ZONE NOT NULL,
    end_time TIMESTAMP WITH TIME ZONE NOT NULL
);

-- 创建排行榜视图
CREATE OR REPLACE VIEW leaderboard AS
SELECT
    p.id AS player_id,
    p.username,
    p.best_score,
    p.best_survival,
    p.total_kills,
    CASE WHEN p.total_answered > 0 THEN (p.total_correct * 100.0 / p.total_answered) ELSE 0 END AS accuracy
FROM
    players p
ORDER BY
    best_score DESC;

-- 创建索引以提高查询性能
CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);
CREATE INDEX IF NOT EXISTS idx_players_email ON players(email);
CREATE INDEX IF NOT EXISTS idx_quiz_sets_owner_id ON quiz_sets(owner_id);
CREATE INDEX IF NOT EXISTS idx_survivor_runs_player_id ON survivor_runs(player_id);
CREATE INDEX IF NOT EXISTS idx_survivor_runs_score ON survivor_runs(score DESC);
`

// DropAllTablesSQL 删除所有表
const DropAllTablesSQL = `
DROP VIEW IF EXISTS leaderboard;
DROP TABLE IF EXISTS survivor_runs;
DROP TABLE IF EXISTS quiz_questions;
DROP TABLE IF EXISTS quiz_sets;
DROP TABLE IF EXISTS players;
`

// InitAllTables 初始化所有数据库表
func InitAllTables() error {
	_, err := DB.Exec(CreateAllTablesSQL)
	if err != nil {
		return err
	}
	return nil
}

// DropAllTables 删除所有数据库表
func DropAllTables() error {
	_, err := DB.Exec(DropAllTablesSQL)
	return err
}
