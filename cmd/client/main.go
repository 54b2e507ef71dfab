package main

import (
	"context"
	"crypto/sha1"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"fde/internal/archive"
	"fde/internal/client"
	"fde/internal/deployconfig"
	"fde/internal/upload"
	"fde/pkg/config"
	"fde/pkg/log"

	"go.uber.org/zap"
)

// main dispatches the CLI sub-commands spec §6 names: deploy, ping,
// health, each a thin adapter over the HTTP surface.
func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "deploy":
		runDeploy(os.Args[2:])
	case "ping":
		runPing(os.Args[2:])
	case "health":
		runHealth(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fde-client <deploy|ping|health> -conf <path> -env <name> [flags]")
}

func loadEnv(fs *flag.FlagSet, args []string) (*deployconfig.Environment, *log.Logger) {
	confPath := fs.String("conf", "config/config.yaml", "config path")
	envName := fs.String("env", "", "environment name")
	fs.Parse(args)

	viperConf := config.NewConfig(*confPath)
	logger := log.NewLog(viperConf)

	cfg, err := deployconfig.Load(*confPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	env, ok := cfg.Environments[*envName]
	if !ok {
		logger.Fatal("unknown environment", zap.String("env", *envName))
	}
	return env, logger
}

func runPing(args []string) {
	fs := flag.NewFlagSet("ping", flag.ExitOnError)
	env, logger := loadEnv(fs, args)

	c, err := client.New(env)
	if err != nil {
		logger.Fatal("build client", zap.Error(err))
	}
	if err := c.Verify(context.Background(), env); err != nil {
		logger.Fatal("verify failed", zap.Error(err))
	}
	fmt.Println("ok")
}

func runHealth(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	env, logger := loadEnv(fs, args)

	c, err := client.New(env)
	if err != nil {
		logger.Fatal("build client", zap.Error(err))
	}
	if err := c.Verify(context.Background(), env); err != nil {
		logger.Fatal("health check failed", zap.Error(err))
	}
	fmt.Println("healthy")
}

func runDeploy(args []string) {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	filePath := fs.String("file", "", "local artifact to upload before deploying")
	extract := fs.Bool("extract", true, "extract the uploaded archive on the server")
	stream := fs.Bool("stream", true, "stream deploy output over SSE")
	uploadID := fs.String("upload-id", "", "resumable upload id (defaults to a derived value)")

	confPath := fs.String("conf", "config/config.yaml", "config path")
	envName := fs.String("env", "", "environment name")
	fs.Parse(args)

	viperConf := config.NewConfig(*confPath)
	logger := log.NewLog(viperConf)

	cfg, err := deployconfig.Load(*confPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	env, ok := cfg.Environments[*envName]
	if !ok {
		logger.Fatal("unknown environment", zap.String("env", *envName))
	}

	c, err := client.New(env)
	if err != nil {
		logger.Fatal("build client", zap.Error(err))
	}
	ctx := context.Background()

	source := *filePath
	if source == "" {
		source = env.LocalPath
	}
	if source != "" {
		if err := uploadSource(ctx, c, logger, env, source, *uploadID, *extract); err != nil {
			logger.Fatal("upload failed", zap.Error(err))
		}
	}

	_, err = c.RunDeploy(ctx, env, *stream, func(ev client.StreamEvent) {
		fmt.Printf("[%s] %s\n", ev.Event, ev.Data)
	})
	if err != nil {
		logger.Fatal("deploy failed", zap.Error(err))
	}
}

// uploadSource dispatches between the two client upload shapes spec §2/§4.5
// describe: a single file uploads as-is, a directory is optionally built,
// staged into a zip via archive.WithZip, checksummed, and uploaded with
// extraction requested so the server lays its contents out under
// uploadPath.
func uploadSource(ctx context.Context, c *client.Client, logger *log.Logger, env *deployconfig.Environment, source, uploadID string, extract bool) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("stat %s: %w", source, err)
	}

	if !info.IsDir() {
		id := uploadID
		if id == "" {
			id = deriveUploadID(source, env.Name)
		}
		result, err := c.UploadFile(ctx, env, source, id, extract)
		if err != nil {
			return err
		}
		logger.Info("upload complete", zap.String("fileName", result.FileName), zap.Int64("fileSize", result.FileSize))
		return nil
	}

	if env.BuildCommand != "" {
		logger.Info("running build command", zap.String("cmd", env.BuildCommand), zap.String("dir", source))
		cmd := exec.CommandContext(ctx, "/bin/sh", "-c", env.BuildCommand)
		cmd.Dir = source
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("build command: %w", err)
		}
	}

	return archive.WithZip(source, env.Name, env.Exclude, archive.NowMillis(), func(zipPath string) error {
		id := uploadID
		if id == "" {
			id = deriveUploadID(zipPath, env.Name)
		}
		// Directory uploads always request extraction: the zip is a
		// staging container, not the artifact the deploy command expects
		// to find under uploadPath (spec §4.5).
		result, err := c.UploadFile(ctx, env, zipPath, id, true)
		if err != nil {
			return err
		}
		logger.Info("upload complete", zap.String("fileName", result.FileName), zap.Int64("fileSize", result.FileSize))
		return nil
	})
}

// deriveUploadID builds a stable default uploadId from an env name and a
// local path, neither of which is guaranteed to satisfy the server's
// path-safe character set on its own (env names are operator-chosen, paths
// contain "/" and "."), so both go through upload.SanitizeID; the path hash
// suffix keeps distinct files from the same env from colliding once their
// full paths are reduced to "_"-separated basenames.
func deriveUploadID(filePath, envName string) string {
	sum := sha1.Sum([]byte(filePath))
	id := fmt.Sprintf("%s-%s-%x",
		upload.SanitizeID(envName),
		upload.SanitizeID(filepath.Base(filePath)),
		sum[:4])
	return upload.SanitizeID(id)
}

