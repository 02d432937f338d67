// Command factcheck-cli provides CLI tools for interacting with a running
// scoring node.
//
// # Commands
//
// submit: Encrypt a content and interaction score through the node's
// encryption gateway and submit them as a post.
//
//	factcheck-cli submit -n http://localhost:8080 -k <hexkey> --content 20 --interaction 10
//
// score: Request homomorphic scoring and decryption of a post.
//
//	factcheck-cli score -n http://localhost:8080 -k <hexkey> --post 0x... --wait
//
// post: Display a stored post.
//
// status: Display node status.
//
// events: Display recent ledger events.
//
// admin: Owner controls (open, close, pause, unpause, add-provider,
// remove-provider, cooldown, transfer). Requires the node admin token.
//
//	factcheck-cli admin open -n http://localhost:8080 -k <ownerkey> -t admin:secret
package main

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	cmdcommon "github.com/haroldubarric0/AI-FactCheck-Fhe/cmd/common"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/services"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "submit":
		err = runSubmit(args)
	case "score":
		err = runScore(args)
	case "post":
		err = runPost(args)
	case "status":
		err = runStatus(args)
	case "events":
		err = runEvents(args)
	case "admin":
		err = runAdmin(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`factcheck-cli - CLI tools for the fact-check scoring node

Usage:
  factcheck-cli <command> [options]

Commands:
  submit    Encrypt and submit a post
  score     Request scoring and decryption of a post
  post      Display a stored post
  status    Display node status
  events    Display recent ledger events
  admin     Owner controls (open, close, pause, unpause,
            add-provider, remove-provider, cooldown, transfer)

Common options:
  -n, --node   Node base URL (default http://localhost:8080)
  -k, --key    secp256k1 signing key (hex, generated if empty)
  -t, --token  Admin token (user:pass), admin commands only`)
}

// cliOptions holds the flags shared by all subcommands plus the leftover
// positional values each command interprets itself.
type cliOptions struct {
	nodeURL string
	keyHex  string
	token   string
	rest    map[string]string
}

func parseArgs(args []string) *cliOptions {
	opts := &cliOptions{
		nodeURL: "http://localhost:8080",
		rest:    make(map[string]string),
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--node", "-n":
			i++
			if i < len(args) {
				opts.nodeURL = args[i]
			}
		case "--key", "-k":
			i++
			if i < len(args) {
				opts.keyHex = args[i]
			}
		case "--token", "-t":
			i++
			if i < len(args) {
				opts.token = args[i]
			}
		default:
			name := args[i]
			if len(name) > 2 && name[:2] == "--" {
				// Value-less flags like --wait stay empty.
				if i+1 < len(args) && args[i+1] != "" && args[i+1][0] != '-' {
					i++
					opts.rest[name[2:]] = args[i]
				} else {
					opts.rest[name[2:]] = ""
				}
			}
		}
	}
	return opts
}

func (o *cliOptions) signingKey() (*ecdsa.PrivateKey, error) {
	key, err := cmdcommon.LoadOrGenerateKey(o.keyHex)
	if err != nil {
		return nil, err
	}
	if o.keyHex == "" {
		fmt.Printf("Generated key for address %s\n", gethcrypto.PubkeyToAddress(key.PublicKey))
	}
	return key, nil
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

func getJSON(url string, out any) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("node returned %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postJSON(url, token string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		user, pass := splitToken(token)
		req.SetBasicAuth(user, pass)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("node returned %d: %s", resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postSigned[T any](url, token string, key *ecdsa.PrivateKey, obj *T, out any) error {
	signed, err := services.NewSigned(key, obj)
	if err != nil {
		return fmt.Errorf("signing request: %w", err)
	}
	return postJSON(url, token, signed, out)
}

func splitToken(token string) (user, pass string) {
	for i := 0; i < len(token); i++ {
		if token[i] == ':' {
			return token[:i], token[i+1:]
		}
	}
	return token, ""
}

func encrypt(nodeURL string, value uint64) (fhe.Ciphertext, error) {
	var resp services.EncryptResponse
	if err := postJSON(nodeURL+"/api/encrypt", "", &services.EncryptRequest{Value: value}, &resp); err != nil {
		return nil, fmt.Errorf("encrypting value: %w", err)
	}
	return resp.Handle, nil
}

func runSubmit(args []string) error {
	opts := parseArgs(args)

	key, err := opts.signingKey()
	if err != nil {
		return err
	}

	content, err := strconv.ParseUint(opts.rest["content"], 10, 64)
	if err != nil {
		return fmt.Errorf("--content must be an unsigned integer: %w", err)
	}
	interaction, err := strconv.ParseUint(opts.rest["interaction"], 10, 64)
	if err != nil {
		return fmt.Errorf("--interaction must be an unsigned integer: %w", err)
	}

	contentCT, err := encrypt(opts.nodeURL, content)
	if err != nil {
		return err
	}
	interactionCT, err := encrypt(opts.nodeURL, interaction)
	if err != nil {
		return err
	}

	var resp services.SubmitPostResponse
	err = postSigned(opts.nodeURL+"/api/posts", "", key, &services.SubmitPostRequest{
		Content:     contentCT,
		Interaction: interactionCT,
	}, &resp)
	if err != nil {
		return err
	}

	fmt.Printf("Post submitted\n  post id: %s\n  batch:   %d\n", resp.PostID.Hex(), resp.BatchID)
	return nil
}

func runScore(args []string) error {
	opts := parseArgs(args)

	key, err := opts.signingKey()
	if err != nil {
		return err
	}

	postHex, ok := opts.rest["post"]
	if !ok {
		return fmt.Errorf("--post is required")
	}
	postID := common.HexToHash(postHex)

	var resp services.ComputeScoreResponse
	err = postSigned(opts.nodeURL+"/api/posts/"+postID.Hex()+"/score", "", key,
		&services.ComputeScoreRequest{PostID: postID}, &resp)
	if err != nil {
		return err
	}

	fmt.Printf("Decryption requested\n  request id: %d\n", resp.RequestID)

	if _, wait := opts.rest["wait"]; !wait {
		return nil
	}

	deadline := time.Now().Add(2 * time.Minute)
	for time.Now().Before(deadline) {
		var post services.PostResponse
		if err := getJSON(opts.nodeURL+"/api/posts/"+postID.Hex(), &post); err != nil {
			return err
		}
		if post.Revealed {
			fmt.Printf("Score revealed: %s\n", post.Score.Dec())
			return nil
		}
		time.Sleep(2 * time.Second)
	}
	return fmt.Errorf("timed out waiting for reveal")
}

func runPost(args []string) error {
	opts := parseArgs(args)

	postHex, ok := opts.rest["post"]
	if !ok {
		return fmt.Errorf("--post is required")
	}

	var post services.PostResponse
	if err := getJSON(opts.nodeURL+"/api/posts/"+common.HexToHash(postHex).Hex(), &post); err != nil {
		return err
	}
	return printJSON(post)
}

func runStatus(args []string) error {
	opts := parseArgs(args)

	var status services.StatusResponse
	if err := getJSON(opts.nodeURL+"/api/status", &status); err != nil {
		return err
	}
	return printJSON(status)
}

func runEvents(args []string) error {
	opts := parseArgs(args)

	url := opts.nodeURL + "/api/events"
	if limit, ok := opts.rest["limit"]; ok {
		url += "?limit=" + limit
	}

	var events []json.RawMessage
	if err := getJSON(url, &events); err != nil {
		return err
	}
	for _, e := range events {
		fmt.Println(string(e))
	}
	return nil
}

func runAdmin(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("admin requires an action: open, close, pause, unpause, add-provider, remove-provider, cooldown, transfer")
	}
	action := args[0]
	opts := parseArgs(args[1:])

	key, err := opts.signingKey()
	if err != nil {
		return err
	}

	switch action {
	case "open", "close":
		var batch services.BatchResponse
		err = postSigned(opts.nodeURL+"/admin/batch/"+action, opts.token, key,
			&services.BatchControlRequest{Action: action}, &batch)
		if err == nil {
			fmt.Printf("Batch %d open=%v\n", batch.BatchID, batch.Open)
		}
	case "pause", "unpause":
		err = postSigned(opts.nodeURL+"/admin/"+action, opts.token, key,
			&services.BatchControlRequest{Action: action}, nil)
	case "add-provider":
		addr, parseErr := parseAddress(opts.rest["address"])
		if parseErr != nil {
			return parseErr
		}
		err = postSigned(opts.nodeURL+"/admin/providers", opts.token, key,
			&services.ProviderRequest{Address: addr}, nil)
	case "remove-provider":
		addr, parseErr := parseAddress(opts.rest["address"])
		if parseErr != nil {
			return parseErr
		}
		err = deleteSigned(opts.nodeURL+"/admin/providers", opts.token, key,
			&services.ProviderRequest{Address: addr})
	case "cooldown":
		seconds, parseErr := strconv.ParseUint(opts.rest["seconds"], 10, 64)
		if parseErr != nil {
			return fmt.Errorf("--seconds must be an unsigned integer: %w", parseErr)
		}
		err = postSigned(opts.nodeURL+"/admin/cooldown", opts.token, key,
			&services.CooldownRequest{Seconds: seconds}, nil)
	case "transfer":
		addr, parseErr := parseAddress(opts.rest["new-owner"])
		if parseErr != nil {
			return parseErr
		}
		err = postSigned(opts.nodeURL+"/admin/ownership", opts.token, key,
			&services.OwnershipRequest{NewOwner: addr}, nil)
	default:
		return fmt.Errorf("unknown admin action: %s", action)
	}

	if err == nil {
		fmt.Println("OK")
	}
	return err
}

func deleteSigned[T any](url, token string, key *ecdsa.PrivateKey, obj *T) error {
	signed, err := services.NewSigned(key, obj)
	if err != nil {
		return fmt.Errorf("signing request: %w", err)
	}

	body, err := json.Marshal(signed)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodDelete, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		user, pass := splitToken(token)
		req.SetBasicAuth(user, pass)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("node returned %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", raw)
	}
	return common.HexToAddress(raw), nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
