// Command miniufsh is an interactive shell over a miniufs image: it
// creates (or truncates) the image named on the command line, then reads
// commands from stdin behind a ":> " prompt until EOF or "exit".
package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Chr1sps/soi-fs"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: miniufsh <file_name> <size_in_bytes>")
		return
	}

	size, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("miniufsh: invalid size %q: %s", os.Args[2], err)
	}

	img, err := miniufs.CreateImage(os.Args[1], size)
	if err != nil {
		log.Fatalf("miniufsh: %s", err)
	}
	defer img.Close()

	run(img, os.Stdin, os.Stdout)
}

func run(img *miniufs.Image, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ":> ")
		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		if cmd == "exit" {
			return
		}
		dispatch(img, out, cmd, args)
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func dispatch(img *miniufs.Image, out *os.File, cmd string, args []string) {
	switch cmd {
	case "ls":
		listing, err := img.Ls(arg(args, 0))
		if err != nil {
			fmt.Fprintln(out, err)
			return
		}
		fmt.Fprint(out, listing)

	case "upload":
		if err := img.Upload(arg(args, 0), arg(args, 1)); err != nil {
			if errors.Is(err, miniufs.ErrNameExists) {
				fmt.Fprintln(out, err)
				return
			}
			fmt.Fprintln(out, err)
		}

	case "extract":
		if err := img.Extract(arg(args, 0), arg(args, 1)); err != nil {
			fmt.Fprintln(out, err)
		}

	case "mkdir":
		if err := img.Mkdir(arg(args, 0)); err != nil {
			fmt.Fprintln(out, err)
		}

	case "rm", "remove":
		if err := img.Remove(arg(args, 0)); err != nil {
			fmt.Fprintln(out, err)
		}

	case "extend":
		n, err := strconv.ParseUint(arg(args, 1), 10, 64)
		if err != nil {
			fmt.Fprintln(out, err)
			return
		}
		if err := img.Extend(arg(args, 0), n); err != nil {
			fmt.Fprintln(out, err)
		}

	case "truncate":
		n, err := strconv.ParseUint(arg(args, 1), 10, 64)
		if err != nil {
			fmt.Fprintln(out, err)
			return
		}
		if err := img.Truncate(arg(args, 0), n); err != nil {
			fmt.Fprintln(out, err)
		}

	case "ln":
		if err := img.Link(arg(args, 1), arg(args, 0)); err != nil {
			fmt.Fprintln(out, err)
		}

	case "df":
		fmt.Fprint(out, img.Df())

	case "help", "h":
		fmt.Fprintln(out, "ls <dir> - prints dir content.")
		fmt.Fprintln(out, "upload <local_file> <virtual_file> - copies a local file into the file system.")
		fmt.Fprintln(out, "extract <virtual_file> <local_file> - extracts a virtual file into a local file.")
		fmt.Fprintln(out, "extend <file> <bytes> - extends file size.")
		fmt.Fprintln(out, "truncate <file> <bytes> - truncates file size.")
		fmt.Fprintln(out, "mkdir <path> - creates missing directories along path.")
		fmt.Fprintln(out, "ln <target> <link_name> - adds a second name for target.")
		fmt.Fprintln(out, "df - prints file system usage.")
		fmt.Fprintln(out, "rm|remove <file> - deletes a virtual file.")
		fmt.Fprintln(out, "h|help - shows this help text.")
	}
}
