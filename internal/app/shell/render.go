package shell

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/dojo/internal/app/features/feedback"
	"github.com/dalemusser/dojo/internal/app/features/profile"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/navigation"
)

// render prints the active view followed by the prompt. It may be called
// from any goroutine.
func (s *Shell) render() {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	// One write per render keeps toasts from landing mid-view.
	var buf bytes.Buffer
	defer func() {
		buf.WriteString("> ")
		_, _ = s.Out.Write(buf.Bytes())
	}()

	st := s.App.Nav.State()
	w := &buf
	switch st.View {
	case navigation.Login:
		fmt.Fprintln(w, "== Login ==")
		writeStatus(w, s.App.Login.Status())
		fmt.Fprintln(w, "  login <email> <password>   or   go register")
	case navigation.Register:
		fmt.Fprintln(w, "== Register ==")
		writeStatus(w, s.App.Register.Status())
		fmt.Fprintln(w, "  register <username> <email> <password>   or   go login")
	case navigation.Dashboard, navigation.Submit:
		s.renderDashboard(w)
	case navigation.Profile:
		s.renderProfile(w)
	case navigation.Group:
		s.renderGroup(w)
	}
}

func (s *Shell) renderDashboard(w io.Writer) {
	v := s.App.Dashboard.View()
	fmt.Fprintf(w, "== Dashboard (%s) ==\n", v.Username)
	switch {
	case v.Loading:
		fmt.Fprintln(w, "  loading groups...")
		return
	case v.Error != "":
		fmt.Fprintf(w, "  ! %s  (retry)\n", v.Error)
		return
	}

	fmt.Fprintln(w, "My groups:")
	if len(v.MyGroups) == 0 {
		fmt.Fprintln(w, "  none yet")
	}
	for _, g := range v.MyGroups {
		fmt.Fprintf(w, "  %s  %s (%d members)  go group:%s\n", g.ID, g.Name, g.MemberCount(), g.ID)
	}
	fmt.Fprintln(w, "Other groups:")
	if len(v.OtherGroups) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, g := range v.OtherGroups {
		action := "join " + g.ID
		if v.Joining[g.ID] {
			action = "joining..."
		}
		fmt.Fprintf(w, "  %s  %s (%d members)  %s\n", g.ID, g.Name, g.MemberCount(), action)
	}
	if v.CreateOpen {
		fmt.Fprintln(w, "New group:")
		writeStatus(w, v.CreateStatus)
	}
}

func (s *Shell) renderProfile(w io.Writer) {
	v, ok := s.App.Profile.Load()
	if !ok {
		return
	}
	fmt.Fprintln(w, "== Profile ==")
	fmt.Fprintf(w, "  username: %s\n  email:    %s\n  github:   %s\n", v.Username, v.Email, v.GithubUsername)
	if s.App.Profile.TakeSuccess() {
		fmt.Fprintf(w, "  %s\n", profile.SuccessMessage)
	}
	writeStatus(w, s.App.Profile.Status())
	fmt.Fprintln(w, "  github <username>   or   back")
}

func (s *Shell) renderGroup(w io.Writer) {
	v := s.App.Group.View()
	if v.Loading {
		fmt.Fprintln(w, "== Group ==\n  loading...")
		return
	}
	if v.Fatal != "" {
		fmt.Fprintf(w, "== Group ==\n  ! %s\n", v.Fatal)
		if v.Retryable {
			fmt.Fprintln(w, "  retry   or   back")
		} else {
			fmt.Fprintln(w, "  back")
		}
		return
	}

	fmt.Fprintf(w, "== %s ==\n  %s\n", v.Group.Name, v.Group.Description)

	fmt.Fprintln(w, "Leaderboard:")
	switch {
	case v.LeaderboardLoading:
		fmt.Fprintln(w, "  loading...")
	case len(v.Leaderboard) == 0:
		fmt.Fprintln(w, "  No leaderboard yet.")
	}
	for i, e := range v.Leaderboard {
		fmt.Fprintf(w, "  %d. %s  %g  (feedback %s)\n", i+1, e.DisplayName, e.Score, e.UserID)
	}

	fmt.Fprintln(w, "Recent challenges:")
	switch {
	case v.HistoryLoading:
		fmt.Fprintln(w, "  loading...")
	case len(v.History) == 0:
		fmt.Fprintln(w, "  none")
	}
	for _, c := range v.History {
		fmt.Fprintf(w, "  %s [%s]\n", c.Topic, c.Difficulty)
	}
	if v.ChallengeOpen {
		fmt.Fprintln(w, "New challenge:")
		writeStatus(w, v.ChallengeStatus)
	}

	if fv := s.App.Feedback.View(); fv.Open {
		writeFeedback(w, fv)
	}
}

func writeFeedback(w io.Writer, v feedback.View) {
	fmt.Fprintf(w, "-- Feedback for %s --\n", v.UserID)
	switch {
	case v.Loading:
		fmt.Fprintln(w, "  loading...")
	case v.Empty():
		fmt.Fprintf(w, "  %s\n", feedback.EmptyMessage)
	}
	for _, it := range v.Items {
		fmt.Fprintf(w, "  %s  %s\n", feedback.ScoreLabel(it.Score), feedback.TimeLabel(it.ProcessedAt, time.Local))
		if it.Text != "" {
			fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(it.Text, "\n", "\n    "))
		}
	}
	fmt.Fprintln(w, "  close")
}

// writeStatus prints a form's banner and field errors in field order.
func writeStatus(w io.Writer, st formpipe.Status) {
	if st.General != "" {
		fmt.Fprintf(w, "  ! %s\n", st.General)
	}
	fields := make([]string, 0, len(st.FieldErrors))
	for f := range st.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(w, "  %s: %s\n", f, st.FieldErrors[f])
	}
}
