// internal/app/fakeapi/server.go
package fakeapi

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Terminology: User Identifiers
//   - UserID / userID / user_id: the hex ObjectID assigned at registration
//   - Email: what users type into the login form's username field

type user struct {
	ID             string
	Username       string
	Email          string
	GithubUsername string
	PasswordHash   []byte
}

type group struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	Members     []string
}

type challenge struct {
	ID               string
	GroupID          string
	Topic            string
	Difficulty       string
	CreatedBy        string
	ProblemStatement string
}

type submission struct {
	UserID      string
	ChallengeID string
	Status      string
	Score       *float64
	Feedback    string
	ProcessedAt time.Time
}

type fault struct {
	status int
	detail string
}

// Server is an in-memory Dojo API. It is safe for concurrent use.
type Server struct {
	Log *zap.Logger

	codec *securecookie.SecureCookie

	mu          sync.Mutex
	users       map[string]*user
	byEmail     map[string]string
	groups      []*group
	xp          map[string]map[string]float64 // group id -> user id -> xp
	challenges  []*challenge
	submissions []submission
	faults      map[string]fault
	gates       map[string]<-chan struct{}
	hits        map[string]int
}

// New returns an empty Server. hashKey signs issued tokens; a random key is
// used when it is empty, so tokens do not survive a restart.
func New(log *zap.Logger, hashKey []byte) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	return &Server{
		Log:     log,
		codec:   securecookie.New(hashKey, nil),
		users:   map[string]*user{},
		byEmail: map[string]string{},
		xp:      map[string]map[string]float64{},
		faults:  map[string]fault{},
		gates:   map[string]<-chan struct{}{},
		hits:    map[string]int{},
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Seeding                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// AddUser registers a user and returns its id.
func (s *Server) AddUser(username, email, password, githubUsername string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, hash, githubUsername)
}

func (s *Server) addUserLocked(username, email string, hash []byte, githubUsername string) string {
	id := primitive.NewObjectID().Hex()
	s.users[id] = &user{
		ID:             id,
		Username:       username,
		Email:          email,
		GithubUsername: githubUsername,
		PasswordHash:   hash,
	}
	s.byEmail[strings.ToLower(email)] = id
	return id
}

// AddGroup creates a group owned by creatorID, who is its first member.
func (s *Server) AddGroup(name, description, creatorID string, memberIDs ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.addGroupLocked(name, description, creatorID)
	for _, id := range memberIDs {
		if !slices.Contains(g.Members, id) {
			g.Members = append(g.Members, id)
		}
	}
	return g.ID
}

func (s *Server) addGroupLocked(name, description, creatorID string) *group {
	g := &group{
		ID:          primitive.NewObjectID().Hex(),
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		Members:     []string{},
	}
	if creatorID != "" {
		g.Members = append(g.Members, creatorID)
	}
	s.groups = append(s.groups, g)
	return g
}

// SetXP sets a user's score within a group.
func (s *Server) SetXP(groupID, userID string, xp float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.xp[groupID] == nil {
		s.xp[groupID] = map[string]float64{}
	}
	s.xp[groupID][userID] = xp
}

// AddChallenge appends a challenge to a group's history and returns its id.
func (s *Server) AddChallenge(groupID, topic, difficulty, createdBy string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addChallengeLocked(groupID, topic, difficulty, createdBy).ID
}

func (s *Server) addChallengeLocked(groupID, topic, difficulty, createdBy string) *challenge {
	c := &challenge{
		ID:               uuid.NewString(),
		GroupID:          groupID,
		Topic:            topic,
		Difficulty:       difficulty,
		CreatedBy:        createdBy,
		ProblemStatement: "Solve a " + strings.ToLower(difficulty) + " problem about " + topic + ".",
	}
	s.challenges = append(s.challenges, c)
	return c
}

// AddFeedback records a completed, graded submission.
func (s *Server) AddFeedback(userID, challengeID string, score float64, text string, processedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, submission{
		UserID:      userID,
		ChallengeID: challengeID,
		Status:      "completed",
		Score:       &score,
		Feedback:    text,
		ProcessedAt: processedAt.UTC(),
	})
}

// Seed loads a small demo data set and returns the demo user's id.
// The demo user signs in with demo@dojo.dev / secret.
func (s *Server) Seed() string {
	demo := s.AddUser("demo", "demo@dojo.dev", "secret", "demo-gh")
	ann := s.AddUser("ann", "ann@dojo.dev", "secret", "ann-gh")
	bob := s.AddUser("bob", "bob@dojo.dev", "secret", "")

	algos := s.AddGroup("Algorithms", "Weekly algorithm practice", ann, demo)
	web := s.AddGroup("Web APIs", "Build and test small HTTP services", bob)
	_ = s.AddGroup("Go Beginners", "First steps with Go", demo)

	s.SetXP(algos, ann, 340)
	s.SetXP(algos, demo, 215.5)
	s.SetXP(web, bob, 90)

	now := time.Now().UTC()
	var last string
	for i, topic := range []string{"Arrays", "Hash maps", "Two pointers", "Graphs", "Dynamic programming", "Tries"} {
		diff := []string{"Easy", "Medium", "Hard"}[i%3]
		last = s.AddChallenge(algos, topic, diff, ann)
		s.AddFeedback(demo, last, float64(60+i*6), "Solid work on "+topic+".", now.Add(time.Duration(i-6)*time.Hour))
	}
	s.AddChallenge(web, "REST basics", "Easy", bob)
	return demo
}

/*─────────────────────────────────────────────────────────────────────────────*
| Fault and latency injection                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// Fail makes every request matching route ("GET /groups/") answer with
// status and detail until Heal is called.
func (s *Server) Fail(route string, status int, detail string) {
	s.mu.Lock()
	s.faults[route] = fault{status: status, detail: detail}
	s.mu.Unlock()
}

// Heal removes an injected fault.
func (s *Server) Heal(route string) {
	s.mu.Lock()
	delete(s.faults, route)
	s.mu.Unlock()
}

// Hold blocks requests matching route until release is closed.
func (s *Server) Hold(route string, release <-chan struct{}) {
	s.mu.Lock()
	s.gates[route] = release
	s.mu.Unlock()
}

// Hits returns how many requests matched route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.hits[route]++
		f, failing := s.faults[route]
		gate := s.gates[route]
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Read helpers (callers hold s.mu)                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Server) findGroupLocked(id string) *group {
	for _, g := range s.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

type leaderRow struct {
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	XP       float64 `json:"xp"`
	GroupID  string  `json:"group_id"`
}

func (s *Server) leaderboardLocked(groupID string) []leaderRow {
	rows := []leaderRow{}
	for userID, xp := range s.xp[groupID] {
		name := "Unknown"
		if u := s.users[userID]; u != nil {
			name = u.Username
		}
		rows = append(rows, leaderRow{UserID: userID, Username: name, XP: xp, GroupID: groupID})
	}
	slices.SortStableFunc(rows, func(a, b leaderRow) int {
		if c := cmp.Compare(b.XP, a.XP); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return rows
}
