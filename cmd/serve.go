package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/timew-bot/internal/telegram"
)

var serveAnnounce bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveAnnounce, "announce", true, "Send the current status to the operator on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := newGateway(cfg, log)
	d, err := newDispatcher(ctx, cfg, gw, log)
	if err != nil {
		return err
	}

	if err := tgbotapi.SetLogger(slog.NewLogLogger(log.Handler(), slog.LevelWarn)); err != nil {
		return err
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	log.Info("connected to telegram", "bot", api.Self.UserName)

	bot := telegram.New(api, d, telegram.Options{
		OperatorID:  cfg.Telegram.OperatorID,
		Keyboard:    cfg.Telegram.Keyboard,
		Reply:       cfg.Telegram.Reply,
		PollTimeout: cfg.Telegram.PollTimeout,
		Log:         log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	if serveAnnounce {
		g.Go(func() error {
			if err := bot.Announce(gctx); err != nil {
				log.Warn("announcing status", "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
