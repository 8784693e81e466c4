// Command threadly is an interactive terminal client for the Threadly
// discussion platform: log in, browse feeds, vote, follow, and resolve
// avatars from a shell.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-print"
	threadly "github.com/goliatone/threadly-client"
	"github.com/goliatone/threadly-client/api"
	"github.com/goliatone/threadly-client/social"
	"github.com/goliatone/threadly-client/store"
	"golang.org/x/term"
)

const (
	oauthCallbackAddr = "127.0.0.1:8910"
	oauthWait         = 2 * time.Minute
)

func main() {
	ctx := context.Background()

	cfg := threadly.LoadConfig()

	creds, err := store.NewSQLiteStore(ctx, cfg.GetStoragePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open credential store: %v\n", err)
		os.Exit(1)
	}
	defer creds.Close()

	app, err := newApp(ctx, cfg, creds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer app.manager.Close()

	app.runREPL(ctx)
}

type app struct {
	client    *api.Client
	manager   *threadly.SessionManager
	voter     *threadly.Voter
	follower  *threadly.Follower
	avatars   *threadly.AvatarResolver
	providers social.Providers
	reader    *bufio.Reader
}

func newApp(ctx context.Context, cfg threadly.Config, creds threadly.CredentialStore) (*app, error) {
	a := &app{
		providers: social.NewProviders(cfg.GetBackendURL()),
		reader:    bufio.NewReader(os.Stdin),
	}

	a.client = api.New(api.Config{
		BaseURL: cfg.GetBaseURL(),
		TokenSource: func() string {
			if a.manager == nil {
				return ""
			}
			return a.manager.Token()
		},
	})

	a.manager = threadly.NewSessionManager(creds, a.client, a.client,
		threadly.WithNavigator(threadly.NavigatorFunc(func() {
			fmt.Println("Session ended. Use 'login' to sign in again.")
		})),
	)
	a.client.SetUnauthorizedHandler(a.manager.HandleUnauthorized)

	a.voter = threadly.NewVoter(a.client)
	a.follower = threadly.NewFollower(a.client)
	a.avatars = threadly.NewAvatarResolver(a.client)

	if err := a.manager.Start(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *app) runREPL(ctx context.Context) {
	fmt.Println("threadly client, type 'help' for commands")

	for {
		fmt.Printf("threadly [%s]> ", a.status())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd, args := parts[0], parts[1:]
		switch cmd {
		case "help":
			a.printHelp()
		case "login":
			a.login(ctx)
		case "register":
			a.register(ctx)
		case "logout":
			a.manager.Logout(ctx)
			fmt.Println("Logged out.")
		case "whoami":
			a.whoami()
		case "feed":
			a.feed(ctx)
		case "trending":
			a.trending(ctx)
		case "vote":
			a.vote(ctx, args)
		case "follow":
			a.follow(ctx, args)
		case "avatar":
			a.avatar(ctx, args)
		case "search":
			a.search(ctx, args)
		case "oauth":
			a.oauthLogin(ctx)
		case "exit", "quit":
			return
		default:
			fmt.Printf("unknown command %q, type 'help'\n", cmd)
		}
	}
}

func (a *app) status() string {
	if a.manager.IsAuthenticated() {
		return a.manager.Identity().Username
	}
	return "anonymous"
}

func (a *app) printHelp() {
	fmt.Println(`commands:
  login                 sign in with username/password
  register              create an account
  logout                clear the session
  whoami                show the current identity
  feed                  show the first page of the global feed
  trending              show trending posts
  vote <postID> <up|down>
  follow <userID>
  avatar <username>     resolve a profile image URL
  search <query>
  oauth                 log in through google/github
  exit | quit`)
}

func (a *app) login(ctx context.Context) {
	username, err := readLine(a.reader, "Username")
	if err != nil {
		fmt.Println(err)
		return
	}

	password, err := readPassword()
	if err != nil {
		fmt.Println(err)
		return
	}

	identity, err := a.manager.Login(ctx, username, string(password))
	if err != nil {
		fmt.Printf("login failed: %v\n", err)
		return
	}

	fmt.Printf("Welcome back, %s!\n", identity.Username)
}

func (a *app) register(ctx context.Context) {
	username, err := readLine(a.reader, "Username")
	if err != nil {
		fmt.Println(err)
		return
	}

	email, err := readLine(a.reader, "Email")
	if err != nil {
		fmt.Println(err)
		return
	}

	password, err := readPassword()
	if err != nil {
		fmt.Println(err)
		return
	}

	req := threadly.RegisterRequest{Username: username, Email: email, Password: string(password)}
	if err := a.manager.Register(ctx, req); err != nil {
		fmt.Printf("registration failed: %v\n", err)
		return
	}

	fmt.Println("Account created. Use 'login' to sign in.")
}

func (a *app) whoami() {
	if !a.manager.IsAuthenticated() {
		fmt.Println("not logged in")
		return
	}
	fmt.Println(print.MaybePrettyJSON(a.manager.Identity()))
}

func (a *app) feed(ctx context.Context) {
	page, err := a.client.GetFeed(ctx, 0, 10)
	if err != nil {
		fmt.Printf("feed failed: %v\n", err)
		return
	}
	a.printPosts(page.Content)
}

func (a *app) trending(ctx context.Context) {
	page, err := a.client.GetTrendingFeed(ctx)
	if err != nil {
		fmt.Printf("trending failed: %v\n", err)
		return
	}
	a.printPosts(page.Content)
}

func (a *app) printPosts(posts []api.Post) {
	for _, post := range posts {
		state := post.VoteState()
		a.voter.Sync(post.ID, state)
		fmt.Printf("[%s] %s by %s (score %d)\n", post.ID, post.Title, post.Author, state.Score())
	}
}

func (a *app) vote(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: vote <postID> <up|down>")
		return
	}

	choice := threadly.VoteUp
	if strings.EqualFold(args[1], "down") {
		choice = threadly.VoteDown
	}

	if !a.voter.Cast(ctx, args[0], choice) {
		fmt.Println("a vote for this post is already in flight")
		return
	}

	if state, ok := a.voter.State(args[0]); ok {
		fmt.Printf("score now %d\n", state.Score())
	}
}

func (a *app) follow(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: follow <userID>")
		return
	}

	if !a.follower.Toggle(ctx, args[0]) {
		fmt.Println("a follow toggle for this user is already in flight")
		return
	}

	if state, ok := a.follower.State(args[0]); ok {
		if state.Following {
			fmt.Println("following")
		} else {
			fmt.Println("unfollowed")
		}
	}
}

func (a *app) avatar(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: avatar <username>")
		return
	}

	url := a.avatars.Resolve(ctx, args[0])
	if url == "" {
		fmt.Println("no avatar")
		return
	}
	fmt.Println(url)
}

func (a *app) search(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: search <query>")
		return
	}

	results, err := a.client.SearchAll(ctx, strings.Join(args, " "))
	if err != nil {
		fmt.Printf("search failed: %v\n", err)
		return
	}

	a.printPosts(results.Posts)
	for _, user := range results.Users {
		fmt.Printf("@%s %s\n", user.Username, user.Bio)
	}
}

// oauthLogin prints the provider entry points, then waits for the backend to
// redirect to the local callback listener with an issued token.
func (a *app) oauthLogin(ctx context.Context) {
	listener := social.NewCallbackListener(oauthCallbackAddr)
	listener.Start()
	defer listener.Shutdown()

	fmt.Println("open one of these in a browser:")
	fmt.Println("  google:", a.providers.GoogleAuthorizationURL())
	fmt.Println("  github:", a.providers.GithubAuthorizationURL())
	fmt.Printf("waiting for the callback on %s (up to %s)...\n", oauthCallbackAddr, oauthWait)

	waitCtx, cancel := context.WithTimeout(ctx, oauthWait)
	defer cancel()

	token, err := listener.Wait(waitCtx)
	if err != nil {
		fmt.Printf("no callback received: %v\n", err)
		return
	}

	identity, err := a.manager.SetAuthFromOAuth(ctx, token)
	if err != nil {
		fmt.Printf("external login failed: %v\n", err)
		return
	}

	fmt.Printf("Welcome, %s!\n", identity.Username)
}

func readLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Printf("%s\n> ", prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readPassword() ([]byte, error) {
	fmt.Print("Enter password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	return pw, err
}
