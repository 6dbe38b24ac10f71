package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"ardomis/internal/config"
	"ardomis/internal/ipc"
)

func main() {
	envFile := cli.StringP("env", "e", filepath.Join(config.DefaultBaseDir(), "ardomis.env"), "Env file path")
	socket := cli.StringP("socket", "s", "", "Control socket path (default $"+ipc.SocketEnv+" or "+ipc.DefaultSocketPath+")")
	cli.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ardomis-ctl [--env file] [--socket path] %s\n", strings.Join(ipc.Commands, "|"))
		cli.PrintDefaults()
	}
	cli.Parse()

	if cli.NArg() != 1 || !ipc.Valid(cli.Arg(0)) {
		cli.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "env file:", err)
	}
	if *socket == "" {
		*socket = ipc.SocketPath()
	}

	if err := ipc.SendCommand(*socket, cli.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "ardomis not running:", err)
		os.Exit(1)
	}
}
