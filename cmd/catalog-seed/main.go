package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-browser/internal/cache"
	"github.com/Clark-Hu/movie-browser/internal/config"
	"github.com/Clark-Hu/movie-browser/internal/domain"
	"github.com/Clark-Hu/movie-browser/internal/repository"
	"github.com/Clark-Hu/movie-browser/internal/store"
)

func main() {
	var (
		data  = flag.String("data", "db/seed/movies.json", "path to a JSON array of movies")
		force = flag.Bool("force", false, "load even when the catalog already has rows")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "[catalog-seed] ", log.LstdFlags|log.Lshortfile)

	movies, err := readMovies(*data)
	if err != nil {
		log.Fatalf("read seed data: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := store.New(ctx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	if _, err := st.ApplyMigrations(ctx, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	repo := repository.New(st)
	existing, err := repo.Movies.Count(ctx)
	if err != nil {
		log.Fatalf("count movies: %v", err)
	}
	if existing > 0 && !*force {
		logger.Printf("catalog already holds %d movies; pass -force to load anyway", existing)
		return
	}

	params := make([]repository.MovieCreateParams, 0, len(movies))
	for _, m := range movies {
		if strings.TrimSpace(m.Title) == "" {
			logger.Printf("skipping record without title")
			continue
		}
		params = append(params, repository.ParamsFromMovie(m))
	}
	inserted, err := repo.Movies.InsertMany(ctx, params)
	if err != nil {
		log.Fatalf("insert movies: %v", err)
	}
	logger.Printf("loaded %d movies from %s", inserted, *data)

	if cfg.RedisAddr == "" {
		return
	}
	respCache, err := cache.New(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Logger:   logger,
	})
	if err != nil {
		logger.Printf("skip cache invalidation: %v", err)
		return
	}
	defer respCache.Close()
	if _, err := respCache.Invalidate(ctx); err != nil {
		logger.Printf("cache invalidation failed: %v", err)
	}
}

func readMovies(path string) ([]domain.Movie, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var movies []domain.Movie
	if err := json.Unmarshal(file, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}
