package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8787
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".glassroot/data/glassroot.db"
	}
	if cfg.Embedding.Type == "" {
		if cfg.Embedding.URL != "" {
			cfg.Embedding.Type = EmbeddingHTTP
		} else {
			cfg.Embedding.Type = EmbeddingNone
		}
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "@cf/baai/bge-base-en-v1.5"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "GLASSROOT_EMBEDDING_API_KEY"
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Embedding.MinDimensions == 0 {
		cfg.Embedding.MinDimensions = 8
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = IndexMemory
		if cfg.Vector.IndexPath == "" {
			cfg.Vector.IndexPath = ".glassroot/data/vectors.idx"
		}
	}
	if cfg.Vector.Qdrant.Collection == "" {
		cfg.Vector.Qdrant.Collection = "glassroot-documents"
	}
	if cfg.Vector.Qdrant.APIKeyEnv == "" {
		cfg.Vector.Qdrant.APIKeyEnv = "GLASSROOT_QDRANT_API_KEY"
	}
	if cfg.Vector.Qdrant.TimeoutSecs == 0 {
		cfg.Vector.Qdrant.TimeoutSecs = 15
	}
	if cfg.Vector.PGVector.DSNEnv == "" {
		cfg.Vector.PGVector.DSNEnv = "GLASSROOT_PGVECTOR_DSN"
	}
	if cfg.Vector.PGVector.Table == "" {
		cfg.Vector.PGVector.Table = "document_vectors"
	}
	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Chat.DefaultModel == "" {
		cfg.Chat.DefaultModel = "openai/gpt-4o-mini"
	}
	if cfg.Chat.SettingsPath == "" {
		cfg.Chat.SettingsPath = ".glassroot/settings.toml"
	}
	if cfg.Chat.Title == "" {
		cfg.Chat.Title = "Glassroot Chat"
	}
}
