package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"auction-chat/domain"
	"auction-chat/search"
	"auction-chat/services"
)

// consoleLoop reads commands from stdin until the context dies or the
// user quits. Plain lines are posted to the current room; slash
// commands drive membership and the local archive.
func consoleLoop(ctx context.Context, log *slog.Logger, service services.IChatService, quit func()) {
	printHelp()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			quit()
			return
		case line == "/help":
			printHelp()
		case line == "/status":
			printStatus(service.Snapshot())
		case line == "/who":
			printParticipants(service.Snapshot())
		case line == "/leave":
			if err := service.LeaveRoom(); err != nil {
				fmt.Println("!", err)
			}
		case strings.HasPrefix(line, "/join "):
			room := domain.RoomID(strings.TrimSpace(strings.TrimPrefix(line, "/join ")))
			if err := service.JoinRoom(room); err != nil {
				fmt.Println("!", err)
			}
		case strings.HasPrefix(line, "/find"):
			runFind(ctx, service, line)
		case strings.HasPrefix(line, "/history"):
			runHistory(service, line)
		case strings.HasPrefix(line, "/"):
			fmt.Println("! unknown command, try /help")
		default:
			// A typed line counts as keyboard activity before the post.
			service.Keystroke()
			if err := service.PostMessage(line); err != nil {
				fmt.Println("!", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn("Console input closed", "error", err)
	}
}

func printHelp() {
	fmt.Println(`Commands:
  /join <room>           join an auction room
  /leave                 leave the current room
  /who                   list participants
  /status                connection and room status
  /find <terms> [--room r] [--limit n]
                         search the local archive
  /history [room]        page through the local archive
  /quit                  exit
Anything else is sent as a message.`)
}

func printStatus(snap services.RoomSnapshot) {
	fmt.Printf("connection: %s", snap.State)
	if snap.LastError != "" {
		fmt.Printf(" (%s)", snap.LastError)
	}
	fmt.Println()
	if snap.Room == "" {
		fmt.Println("room: none")
		return
	}
	fmt.Printf("room: %s, status: %s, messages: %d\n", snap.Room, snap.Status, len(snap.Messages))
	if snap.Notice != "" {
		fmt.Println("notice:", snap.Notice)
	}
	if len(snap.Typing) > 0 {
		fmt.Printf("typing: %s\n", strings.Join(snap.Typing, ", "))
	}
}

func printParticipants(snap services.RoomSnapshot) {
	if snap.Room == "" {
		fmt.Println("! join a room first")
		return
	}
	table := newTable([]string{"User ID", "Username", "Typing"})
	for _, p := range snap.Participants {
		typing := ""
		if p.Typing {
			typing = "yes"
		}
		table.Append([]string{p.UserID, p.Username, typing})
	}
	table.Render()
}

func runFind(ctx context.Context, service services.IChatService, line string) {
	query := search.NewQuery(line)
	if query.Terms == "" {
		fmt.Println("! usage: /find <terms> [--room r] [--limit n]")
		return
	}
	hits, err := service.Find(ctx, query)
	if err != nil {
		fmt.Println("!", err)
		return
	}
	table := newTable([]string{"Room", "Time", "Author", "Body"})
	for _, m := range hits {
		table.Append([]string{string(m.Room), m.At.Local().Format("2006-01-02 15:04"), m.Author, m.Body})
	}
	table.Render()
	fmt.Printf("%d result(s)\n", len(hits))
}

func runHistory(service services.IChatService, line string) {
	fields := strings.Fields(line)
	var room domain.RoomID
	if len(fields) > 1 {
		room = domain.RoomID(fields[1])
	} else {
		room = service.Snapshot().Room
	}
	if room == "" {
		fmt.Println("! usage: /history <room>")
		return
	}
	messages, _, err := service.Transcript(room, nil)
	if err != nil {
		fmt.Println("!", err)
		return
	}
	table := newTable([]string{"Time", "Author", "Body"})
	for _, m := range messages {
		table.Append([]string{m.At.Local().Format("2006-01-02 15:04"), m.Author, m.Body})
	}
	table.Render()
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
