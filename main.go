//
// Blog
// ====
// A HTTP REST service for articles, their comments and optimized images.
//
// Also check the generated route docs, to run yourself do:
// `go run . routes`
//
// Boot the server:
// ----------------
// $ go run . seed
// $ go run . serve
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/ping
// pong
//
// $ curl http://localhost:3333/articles
// [{"id":1,"title":"Hi","content":"A first article...","author":"Peter","comments_count":2,...},...]
//
// $ curl 'http://localhost:3333/articles/search?q=cafe'
// [{"id":2,"title":"Un café à Paris","author":"Julia","comments_count":1,...}]
//
// $ curl -X POST -d '{"id":99,"title":"Hi","content":"sup","author_id":1}' http://localhost:3333/articles
// {"id":4,"title":"Hi","content":"sup","author_id":1,...}
//
// $ curl -F image=@photo.jpg http://localhost:3333/images
// {"message":"Image uploaded and optimized successfully","url":"/storage/images/<base>.jpg",...}
//
// $ curl -X DELETE 'http://localhost:3333/images?path=images/<base>-thumb.jpg'
// {"message":"Image deleted successfully"}
//
// $ curl http://localhost:9999/metrics
//
package main

import (
	"os"

	"github.com/SergeyParamoshkin/blog/internal/config"
	"github.com/spf13/cobra"
)

const ServiceName = "blog"

var (
	flagConfig string
	v          = config.New()
)

var rootCmd = &cobra.Command{
	Use:          ServiceName,
	Short:        "Blog REST API",
	Long:         "Articles, comments and image variants over a chi REST API backed by sqlite.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (yaml, json, toml or env)")
	rootCmd.PersistentFlags().String("dsn", "", "sqlite database file")
	_ = v.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("dsn"))

	serveCmd.Flags().String("addr", "", "application address")
	serveCmd.Flags().String("diag_addr", "", "diag address serving /metrics")
	_ = v.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("diag_addr", serveCmd.Flags().Lookup("diag_addr"))

	seedCmd.Flags().StringVar(&flagFixtures, "file", "", "fixture file, defaults to the embedded set")

	rootCmd.AddCommand(serveCmd, routesCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
