// config.go

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Game     GameConfig     `mapstructure:"game"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	GamePort     int    `mapstructure:"game_port"`
	GatewayPort  int    `mapstructure:"gateway_port"`
	Debug        bool   `mapstructure:"debug"`
	LogLevel     string `mapstructure:"log_level"`
	MaxRoomCount int    `mapstructure:"max_room_count"`
	MaxPlayers   int    `mapstructure:"max_players"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) error {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	registerDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("无法读取配置文件: %w", err)
	}

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		return fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := GlobalConfig.Game.Validate(); err != nil {
		return fmt.Errorf("游戏参数无效: %w", err)
	}

	return nil
}

// registerDefaults 注册默认值，配置文件缺省的键使用默认游戏参数
func registerDefaults(v *viper.Viper) {
	d := DefaultGameConfig()

	v.SetDefault("server.game_port", 8081)
	v.SetDefault("server.gateway_port", 8080)
	v.SetDefault("server.max_room_count", 100)
	v.SetDefault("server.max_players", 8)
	v.SetDefault("auth.token_ttl_hours", 24)

	v.SetDefault("game.player.speed", d.Player.Speed)
	v.SetDefault("game.player.max_hp", d.Player.MaxHP)
	v.SetDefault("game.player.invincibility_ms", d.Player.InvincibilityMs)
	v.SetDefault("game.player.pickup_range", d.Player.PickupRange)
	v.SetDefault("game.player.radius", d.Player.Radius)

	v.SetDefault("game.xp.base_to_level", d.XP.BaseToLevel)
	v.SetDefault("game.xp.multiplier", d.XP.Multiplier)
	v.SetDefault("game.xp.gem_attraction_speed", d.XP.GemAttractionSpeed)
	v.SetDefault("game.xp.max_level", d.XP.MaxLevel)

	v.SetDefault("game.wave.duration_ms", d.Wave.DurationMs)
	v.SetDefault("game.wave.base_spawn_interval_ms", d.Wave.BaseSpawnIntervalMs)
	v.SetDefault("game.wave.min_spawn_interval_ms", d.Wave.MinSpawnIntervalMs)
	v.SetDefault("game.wave.spawn_rate_multiplier", d.Wave.SpawnRateMultiplier)
	v.SetDefault("game.wave.boss_every", d.Wave.BossEvery)
	v.SetDefault("game.wave.boss_stagger_ms", d.Wave.BossStaggerMs)
	v.SetDefault("game.wave.spawn_padding", d.Wave.SpawnPadding)
	v.SetDefault("game.wave.stat_growth_per_wave", d.Wave.StatGrowthPerWave)

	v.SetDefault("game.limits.max_weapons", d.Limits.MaxWeapons)
	v.SetDefault("game.limits.max_passives", d.Limits.MaxPassives)
	v.SetDefault("game.limits.upgrade_choices", d.Limits.UpgradeChoices)

	v.SetDefault("game.world.viewport_width", d.World.ViewportWidth)
	v.SetDefault("game.world.viewport_height", d.World.ViewportHeight)
	v.SetDefault("game.world.cleanup_distance", d.World.CleanupDistance)
	v.SetDefault("game.world.bounce_padding", d.World.BouncePadding)
	v.SetDefault("game.world.death_delay_ms", d.World.DeathDelayMs)
	v.SetDefault("game.world.joystick_deadzone", d.World.JoystickDeadzone)
	v.SetDefault("game.world.health_drop_chance", d.World.HealthDropChance)
	v.SetDefault("game.world.magnet_drop_chance", d.World.MagnetDropChance)
	v.SetDefault("game.world.health_orb_value", d.World.HealthOrbValue)

	v.SetDefault("game.quiz.correct_bonus", d.Quiz.CorrectBonus)
	v.SetDefault("game.quiz.revert_resume_ms", d.Quiz.RevertResumeMs)

	v.SetDefault("game.session.tick_ms", d.Session.TickMs)
	v.SetDefault("game.session.snapshot_interval_ms", d.Session.SnapshotIntervalMs)
	v.SetDefault("game.session.starting_weapon", d.Session.StartingWeapon)
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TokenTTL 令牌有效期
func (c *AuthConfig) TokenTTL() time.Duration {
	if c.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenTTLHours) * time.Hour
}
