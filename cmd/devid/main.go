// Command devid is a terminal client for the DEvid video-sharing service:
// log in, look up uploaders, inspect videos and cast votes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/devidclub/devid-go/internal/cache"
	"github.com/devidclub/devid-go/internal/cdn"
	"github.com/devidclub/devid-go/internal/client"
	"github.com/devidclub/devid-go/internal/config"
	"github.com/devidclub/devid-go/internal/datasource"
	"github.com/devidclub/devid-go/internal/logging"
	"github.com/devidclub/devid-go/internal/repository"
	"github.com/devidclub/devid-go/internal/session"
	"github.com/devidclub/devid-go/pkg/models"
)

const usage = `Usage: devid [-config FILE] COMMAND [ARGS]

Commands:
  login -user NAME -password PASSWORD   authenticate and store the session
  logout                                discard the stored session
  whoami                                show the stored session
  user ID|@NAME                         show a user profile
  video ID                              show video metadata
  vote ID up|down|none                  cast or retract a vote (needs login)
  share ID                              print the public watch link
`

// app bundles the constructed data layer for the subcommands.
type app struct {
	users    *repository.UserRepository
	videos   *repository.VideoRepository
	login    *repository.LoginRepository
	cdn      *cdn.Client
	sessions *session.FileStore
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	a, err := newApp(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devid: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "devid: %v\n", err)
		os.Exit(1)
	}
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, err
	}

	sessionFile := cfg.Session.File
	if sessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot locate session file: %w", err)
		}
		sessionFile = filepath.Join(home, ".devid", "session.json")
	}
	sessions := session.NewFileStore(sessionFile)

	stored, err := sessions.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring unreadable session file")
	}

	clientOpts := []client.Option{
		client.WithTimeout(cfg.Backend.Timeout),
		client.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.RateBurst),
		client.WithLogger(logger),
	}
	anonymous := client.New(cfg.Backend.Root, clientOpts...)
	api := anonymous
	if stored != nil {
		api = client.New(cfg.Backend.Root, append(clientOpts, client.WithToken(stored.Token))...)
	}

	cdnClient := cdn.New(cfg.CDN.Root, cfg.CDN.WatchRoot, cdn.WithLogger(logger))

	userOpts := []repository.UserOption{repository.WithUserLogger(logger)}
	videoOpts := []repository.VideoOption{repository.WithVideoLogger(logger)}
	switch cfg.Cache.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		userOpts = append(userOpts, repository.WithUserStores(
			cache.NewRedis[models.User](rdb, "devid:user:id", cfg.Cache.TTL),
			cache.NewRedis[models.User](rdb, "devid:user:name", cfg.Cache.TTL),
		))
		videoOpts = append(videoOpts, repository.WithVideoStore(
			cache.NewRedis[models.Video](rdb, "devid:video", cfg.Cache.TTL),
		))
	default:
		userOpts = append(userOpts, repository.WithUserCacheCapacity(cfg.Cache.Capacity))
		videoOpts = append(videoOpts, repository.WithVideoCacheCapacity(cfg.Cache.Capacity))
	}

	a := &app{
		users:    repository.NewUserRepository(datasource.NewUserDataSource(api, cdnClient), userOpts...),
		videos:   repository.NewVideoRepository(datasource.NewVideoDataSource(api), videoOpts...),
		login:    repository.NewLoginRepository(datasource.NewLoginDataSource(anonymous, logger), repository.WithLoginLogger(logger)),
		cdn:      cdnClient,
		sessions: sessions,
	}
	a.login.Restore(stored)
	return a, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.runLogin(ctx, args)
	case "logout":
		a.login.Logout(ctx)
		if err := a.sessions.Delete(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	case "whoami":
		return a.runWhoami()
	case "user":
		return a.runUser(ctx, args)
	case "video":
		return a.runVideo(ctx, args)
	case "vote":
		return a.runVote(ctx, args)
	case "share":
		if len(args) != 1 {
			return fmt.Errorf("usage: share ID")
		}
		fmt.Println(a.cdn.ShareLink(args[0]))
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "user name")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" || *password == "" {
		return fmt.Errorf("usage: login -user NAME -password PASSWORD")
	}

	logged, err := a.login.Login(ctx, *user, *password).Get()
	if err != nil {
		return err
	}
	if err := a.sessions.Save(&logged); err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", logged.UserName, logged.DisplayName)
	return nil
}

func (a *app) runWhoami() error {
	current := a.login.Session()
	if current == nil {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s (%s) <%s>, joined %s\n",
		current.UserName, current.DisplayName, current.Email,
		current.Joined.Format("2006-01-02"))
	return nil
}

func (a *app) runUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: user ID|@NAME")
	}

	var user models.User
	var err error
	if name, ok := strings.CutPrefix(args[0], "@"); ok {
		user, err = a.users.GetByUserName(ctx, name).Get()
	} else {
		user, err = a.users.GetByID(ctx, args[0]).Get()
	}
	if err != nil {
		return err
	}

	fmt.Printf("@%s\t%s\tjoined %s\tid %s\n",
		user.UserName, user.DisplayName, user.Joined.Format("2006-01-02"), user.ID)
	return nil
}

func (a *app) runVideo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: video ID")
	}
	video, err := a.videos.GetByID(ctx, args[0]).Get()
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", video.Title)
	fmt.Printf("  uploader %s, uploaded %s, %ds\n",
		video.UserID, video.Uploaded.Format("2006-01-02"), video.Duration)
	fmt.Printf("  %d likes, %d dislikes, own vote: %s\n", video.Likes, video.Dislikes, video.OwnRating)
	if video.Description != "" {
		fmt.Printf("  %s\n", video.Description)
	}
	return nil
}

func (a *app) runVote(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: vote ID up|down|none")
	}
	if !a.login.IsLoggedIn() {
		return fmt.Errorf("vote requires a login")
	}

	var rating models.Rating
	switch args[1] {
	case "up":
		rating = models.RatingLike
	case "down":
		rating = models.RatingDislike
	case "none":
		rating = models.RatingNeutral
	default:
		return fmt.Errorf("unknown vote %q (want up, down or none)", args[1])
	}

	video, err := a.videos.Vote(ctx, args[0], rating).Get()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d likes, %d dislikes, own vote: %s\n",
		video.Title, video.Likes, video.Dislikes, video.OwnRating)
	return nil
}
