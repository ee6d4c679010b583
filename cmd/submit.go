package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/greencampus/facility-reports/client"
	"github.com/greencampus/facility-reports/client/drafts"
	"github.com/greencampus/facility-reports/client/photo"
	"github.com/greencampus/facility-reports/internal/submission"
	"github.com/spf13/cobra"
)

// submitCmd 提交草稿命令
var submitCmd = &cobra.Command{
	Use:   "submit <waste|resource|space>",
	Short: "Submit a saved report draft to the server",
	Long: `Submit the saved draft of one report kind. The draft is removed only after
the server accepts it; on any failure it stays on disk for the next attempt.

--form replaces the draft with a JSON form file and --photo appends
compressed photos to it before submitting.

Example:
  export FACILITY_PASSWORD='...'
  facility-reports submit waste --server http://localhost:5000 --username kamal \
    --form waste.json --photo bin.jpg --photo room.jpg`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := drafts.ParseKind(args[0])
		if err != nil {
			log.Fatal(err)
		}
		opts := submitOptions{kind: kind}
		opts.server, _ = cmd.Flags().GetString("server")
		opts.dir, _ = cmd.Flags().GetString("drafts-dir")
		opts.username, _ = cmd.Flags().GetString("username")
		opts.formFile, _ = cmd.Flags().GetString("form")
		opts.photos, _ = cmd.Flags().GetStringSlice("photo")

		if err := runSubmit(opts); err != nil {
			log.Fatalf("Submit failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().String("server", "http://localhost:5000", "API server base URL")
	submitCmd.Flags().String("drafts-dir", defaultDraftsDir(), "Directory holding drafts and the saved session")
	submitCmd.Flags().String("username", "", "Log in as this user when no session is saved (password from FACILITY_PASSWORD)")
	submitCmd.Flags().String("form", "", "JSON form file that replaces the saved draft")
	submitCmd.Flags().StringSlice("photo", nil, "Photo file to compress and attach (repeatable)")
}

type submitOptions struct {
	kind     drafts.Kind
	server   string
	dir      string
	username string
	formFile string
	photos   []string
}

func defaultDraftsDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "facility-reports")
	}
	return ".facility-reports"
}

func runSubmit(opts submitOptions) error {
	store, err := drafts.Open(opts.dir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	api, err := authenticate(ctx, store, opts)
	if err != nil {
		return err
	}

	switch opts.kind {
	case drafts.KindWaste:
		return submitDraft(ctx, store, api, opts, func(form *submission.WasteInput) *[]submission.PhotoInput {
			return &form.Photos
		}, api.SubmitWaste)
	case drafts.KindResource:
		return submitDraft(ctx, store, api, opts, func(form *submission.ResourceInput) *[]submission.PhotoInput {
			return &form.Photos
		}, api.SubmitResources)
	default:
		return submitDraft(ctx, store, api, opts, func(form *submission.SpaceInput) *[]submission.PhotoInput {
			return &form.Photos
		}, api.SubmitSpace)
	}
}

// authenticate reuses the saved session or logs in with --username
func authenticate(ctx context.Context, store *drafts.Store, opts submitOptions) (*client.Client, error) {
	session, err := store.Session()
	if err == nil && !session.Expired(time.Now()) && (opts.username == "" || opts.username == session.Username) {
		return client.New(opts.server, client.WithToken(session.Token)), nil
	}
	if err != nil && !errors.Is(err, drafts.ErrNoSession) {
		return nil, err
	}

	if opts.username == "" {
		return nil, fmt.Errorf("no valid session saved, pass --username to log in")
	}
	password := os.Getenv("FACILITY_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("FACILITY_PASSWORD is not set")
	}

	api := client.New(opts.server)
	result, err := api.Login(ctx, opts.username, password)
	if err != nil {
		return nil, err
	}
	if err := store.SaveSession(drafts.Session{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Username:  result.User.Username,
	}); err != nil {
		log.Printf("Warning: failed to save session: %v", err)
	}
	log.Printf("Logged in as %s (%s)", result.User.Username, result.User.Role)
	return api, nil
}

// submitDraft updates the draft from --form/--photo, saves it, then submits
// and clears it only when the server accepted it
func submitDraft[F drafts.Form](
	ctx context.Context,
	store *drafts.Store,
	api *client.Client,
	opts submitOptions,
	photosOf func(*F) *[]submission.PhotoInput,
	send func(context.Context, F) (*client.Submitted, error),
) error {
	var form F
	if draft, err := drafts.Load[F](store); err == nil {
		form = draft.Form
	} else if !errors.Is(err, drafts.ErrNoDraft) {
		return err
	} else if opts.formFile == "" {
		return fmt.Errorf("no %s draft saved in %s, pass --form", opts.kind, store.Dir())
	}

	if opts.formFile != "" {
		raw, err := os.ReadFile(opts.formFile)
		if err != nil {
			return err
		}
		var fresh F
		if err := json.Unmarshal(raw, &fresh); err != nil {
			return fmt.Errorf("failed to parse %s: %w", opts.formFile, err)
		}
		form = fresh
	}
	for _, path := range opts.photos {
		p, err := photo.FromFile(path, photo.Options{})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		list := photosOf(&form)
		*list = append(*list, p)
	}

	if opts.formFile != "" || len(opts.photos) > 0 {
		if err := drafts.Save(store, form); err != nil {
			return err
		}
	}

	submitted, err := send(ctx, form)
	if err != nil {
		if client.IsUnauthorized(err) {
			_ = store.ClearSession()
			return fmt.Errorf("session expired, log in again with --username: %w", err)
		}
		return fmt.Errorf("draft kept in %s: %w", store.Dir(), err)
	}

	if err := store.Clear(opts.kind); err != nil {
		log.Printf("Warning: submitted but failed to clear draft: %v", err)
	}
	log.Printf("Submitted %s report %s with %d photos", opts.kind, submitted.ID, submitted.PhotosCount)
	return nil
}
