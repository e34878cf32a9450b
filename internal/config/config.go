package config

import "os"

type Config struct {
	MongoURI     string
	MongoDB      string
	RedisAddr    string
	Port         string
	QuestionBank string
}

func Load() *Config {
	return &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "quizclash"),
		RedisAddr:    getEnv("REDIS_URI", "localhost:6379"),
		Port:         getEnv("PORT", "8080"),
		QuestionBank: getEnv("QUESTION_BANK", "data/questions.json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
