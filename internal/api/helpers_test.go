package api

import "github.com/Miche5967/movie-analyse-recommendation/pkg/config"

func testConfig() *config.Config {
	return &config.Config{Port: "0", Env: "development"}
}
