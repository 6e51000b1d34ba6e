package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/guarzo/talentiq/common/model"
	"github.com/guarzo/talentiq/modules/dashboard"
)

func usage() {
	fmt.Fprint(os.Stderr, `usage: talentiq [-config path] <command> [args]

commands:
  register -name N -email E -password P [-role candidate|recruiter]
  login -email E -password P
  logout
  refresh
  status
  jobs list
  jobs get <id>
  jobs create -title T [-jd TEXT] [-skills a,b] [-location L] [-salary-min N] [-salary-max N] [-remote]
  jobs update <id> [same flags as create] [-status open|closed]
  jobs delete <id>
  profile
  upload-resume <file>
  recommendations
  embeddings generate <text>
  embeddings search -q TEXT [-n N]
  embeddings add -id ID (-text TEXT | -file PATH)
  embeddings stats
  embeddings model
  dashboard [-logout]
  health [-wait]
`)
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.svc.Logout(ctx)
	case "refresh":
		tok, err := a.svc.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("session refreshed, access token valid until %s\n", formatExpiry(tok.Expiry))
		return nil
	case "status":
		return a.status()
	case "jobs":
		return a.jobs(ctx, args)
	case "profile":
		p, err := a.svc.GetProfile(ctx)
		if err != nil {
			return err
		}
		return printJSON(p)
	case "upload-resume":
		return a.uploadResume(ctx, args)
	case "recommendations":
		r, err := a.svc.GetRecommendations(ctx)
		if err != nil {
			return err
		}
		return printJSON(r)
	case "embeddings":
		return a.embeddings(ctx, args)
	case "dashboard":
		return a.dashboard(ctx, args)
	case "health":
		return a.health(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var req model.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.Role, "role", model.RoleCandidate, "candidate or recruiter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return fmt.Errorf("register: -email and -password are required")
	}

	resp, err := a.svc.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("registered and signed in as %s\n", userLabel(resp.User))
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	var req model.LoginRequest
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return fmt.Errorf("login: -email and -password are required")
	}

	resp, err := a.svc.Login(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", userLabel(resp.User))
	return nil
}

func (a *app) status() error {
	tok, err := a.sess.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		fmt.Println("not signed in")
		return nil
	}

	if u, err := a.sess.User(); err == nil {
		fmt.Printf("user:    %s\n", userLabel(u))
	}
	fmt.Printf("expires: %s\n", formatExpiry(tok.Expiry))
	fmt.Printf("valid:   %t\n", tok.Valid())
	return nil
}

func (a *app) jobs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("jobs: missing subcommand (list, get, create, update, delete)")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		jobs, err := a.svc.ListJobs(ctx)
		if err != nil {
			return err
		}
		for _, j := range jobs {
			fmt.Printf("%s\t%s\n", j.ID, j.Title)
		}
		return nil
	case "get":
		id, err := firstArg("jobs get", rest)
		if err != nil {
			return err
		}
		job, err := a.svc.GetJob(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(job)
	case "create":
		in, err := parseJobInput("jobs create", rest)
		if err != nil {
			return err
		}
		if in.Title == "" {
			return fmt.Errorf("jobs create: -title is required")
		}
		job, err := a.svc.CreateJob(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("created job %s\n", job.ID)
		return nil
	case "update":
		id, err := firstArg("jobs update", rest)
		if err != nil {
			return err
		}
		in, err := parseJobInput("jobs update", rest[1:])
		if err != nil {
			return err
		}
		job, err := a.svc.UpdateJob(ctx, id, in)
		if err != nil {
			return err
		}
		return printJSON(job)
	case "delete":
		id, err := firstArg("jobs delete", rest)
		if err != nil {
			return err
		}
		if err := a.svc.DeleteJob(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted job %s\n", id)
		return nil
	default:
		return fmt.Errorf("jobs: unknown subcommand %q", sub)
	}
}

func parseJobInput(name string, args []string) (model.JobInput, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var (
		in        model.JobInput
		skills    string
		salaryMin int
		salaryMax int
	)
	fs.StringVar(&in.Title, "title", "", "job title")
	fs.StringVar(&in.JDText, "jd", "", "job description")
	fs.StringVar(&skills, "skills", "", "comma separated required skills")
	fs.StringVar(&in.Location, "location", "", "location")
	fs.IntVar(&salaryMin, "salary-min", 0, "minimum salary")
	fs.IntVar(&salaryMax, "salary-max", 0, "maximum salary")
	fs.BoolVar(&in.Remote, "remote", false, "remote position")
	fs.StringVar(&in.Status, "status", "", "open or closed")
	if err := fs.Parse(args); err != nil {
		return in, err
	}

	if skills != "" {
		for _, s := range strings.Split(skills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				in.RequiredSkills = append(in.RequiredSkills, s)
			}
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "salary-min":
			in.SalaryMin = &salaryMin
		case "salary-max":
			in.SalaryMax = &salaryMax
		}
	})
	return in, nil
}

func (a *app) uploadResume(ctx context.Context, args []string) error {
	path, err := firstArg("upload-resume", args)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := a.svc.UploadResume(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Printf("uploaded %s (%d bytes): %s\n", res.Format, res.Size, res.URL)
	return nil
}

func (a *app) embeddings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("embeddings: missing subcommand (generate, search, add, stats, model)")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "generate":
		text := strings.Join(rest, " ")
		e, err := a.svc.GenerateEmbedding(ctx, text)
		if err != nil {
			return err
		}
		return printJSON(e)
	case "search":
		fs := flag.NewFlagSet("embeddings search", flag.ContinueOnError)
		var req model.SearchRequest
		fs.StringVar(&req.QueryText, "q", "", "query text")
		fs.IntVar(&req.NResults, "n", model.DefaultSearchResults, "number of results")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		res, err := a.svc.SearchResumes(ctx, req)
		if err != nil {
			return err
		}
		for i, id := range res.Results.IDs {
			fmt.Printf("%s\t%.4f\n", id, res.Results.Distances[i])
		}
		return nil
	case "add":
		fs := flag.NewFlagSet("embeddings add", flag.ContinueOnError)
		var (
			req  model.AddResumeRequest
			path string
		)
		fs.StringVar(&req.ResumeID, "id", "", "resume id")
		fs.StringVar(&req.ResumeText, "text", "", "resume text")
		fs.StringVar(&path, "file", "", "read resume text from file")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			req.ResumeText = string(b)
		}
		res, err := a.svc.AddResume(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", res.ResumeID, res.Message)
		return nil
	case "stats":
		st, err := a.svc.CollectionStats(ctx)
		if err != nil {
			return err
		}
		return printJSON(st)
	case "model":
		m, err := a.svc.ModelInfo(ctx)
		if err != nil {
			return err
		}
		return printJSON(m)
	default:
		return fmt.Errorf("embeddings: unknown subcommand %q", sub)
	}
}

func (a *app) dashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	logout := fs.Bool("logout", false, "log out from the dashboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, err := dashboard.New(a.store, func(path string) {
		fmt.Printf("-> %s\n", path)
	})
	if err != nil {
		return err
	}
	if *logout {
		return d.Logout(ctx)
	}
	return d.Render(os.Stdout)
}

func (a *app) health(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	wait := fs.Bool("wait", false, "retry with backoff while the API answers 5xx")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		h   *model.HealthResponse
		err error
	)
	if *wait {
		h, err = a.svc.WaitHealthy(ctx)
	} else {
		h, err = a.svc.Health(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s %s (%s) at %s\n", h.Status, h.Version, h.Environment, a.cfg.API.URL)
	return nil
}

func firstArg(cmd string, args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", fmt.Errorf("%s: missing argument", cmd)
	}
	return args[0], nil
}

func userLabel(u *model.User) string {
	if u == nil {
		return "unknown user"
	}
	return fmt.Sprintf("%s <%s> (%s)", u.Name, u.Email, u.Role)
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(time.RFC1123)
}

func printJSON(v interface{}) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
