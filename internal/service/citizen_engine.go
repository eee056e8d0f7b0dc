package service

import (
	"context"
	"math/rand/v2"
	"time"

	"mooderia/internal/featureflags"
	"mooderia/internal/models"
	"mooderia/internal/observability"
	"mooderia/internal/scheduler"
)

// Stage delays after a post is created.
const (
	HeartDelay   = 3 * time.Second
	CommentDelay = 7 * time.Second
	RepostDelay  = 12 * time.Second
)

// CitizenCommentText is what synthetic citizens say.
const CitizenCommentText = "This totally speaks to my vibe today!"

// DefaultCitizens is the synthetic identity pool.
var DefaultCitizens = []string{"NeoCitizen", "VibeExplorer", "CyberPanda"}

// Publisher fans notifications out to live subscribers.
type Publisher interface {
	PublishNotification(ctx context.Context, recipient string, note models.Notification) error
}

// CitizenEngine reacts to new posts with delayed synthetic engagement: a
// heart, a comment and a repost, each from a random citizen. Stages are
// independent and look the post up by id when they fire.
type CitizenEngine struct {
	state     *AppState
	sched     scheduler.Scheduler
	pool      []string
	flags     *featureflags.Manager
	publisher Publisher
	pick      func(n int) int
}

// NewCitizenEngine creates an engine. An empty pool uses DefaultCitizens.
// flags and publisher may be nil.
func NewCitizenEngine(state *AppState, sched scheduler.Scheduler, pool []string, flags *featureflags.Manager, publisher Publisher) *CitizenEngine {
	if len(pool) == 0 {
		pool = DefaultCitizens
	}
	return &CitizenEngine{
		state:     state,
		sched:     sched,
		pool:      pool,
		flags:     flags,
		publisher: publisher,
		pick:      rand.IntN,
	}
}

var _ PostListener = (*CitizenEngine)(nil)

type stage struct {
	kind  models.NotificationType
	flag  string
	delay time.Duration
}

var stages = []stage{
	{kind: models.NotificationHeart, flag: featureflags.CitizenHeart, delay: HeartDelay},
	{kind: models.NotificationComment, flag: featureflags.CitizenComment, delay: CommentDelay},
	{kind: models.NotificationRepost, flag: featureflags.CitizenRepost, delay: RepostDelay},
}

// OnPostCreated arms the reaction stages for post. The repost stage keeps
// the content captured now.
func (e *CitizenEngine) OnPostCreated(post *models.Post) {
	if post == nil {
		return
	}
	snapshot := post.Clone()
	for _, st := range stages {
		if !e.flags.Allowed(st.flag, post.Author) {
			observability.SyntheticInteractions.WithLabelValues(string(st.kind), "disabled").Inc()
			continue
		}
		e.sched.Schedule(st.delay, func() {
			e.fire(st.kind, snapshot)
		})
	}
}

func (e *CitizenEngine) fire(kind models.NotificationType, post *models.Post) {
	ctx := context.Background()
	citizen := e.pool[e.pick(len(e.pool))]
	op := "citizen_" + string(kind)
	fields := map[string]interface{}{
		"post_id": post.ID,
		"citizen": citizen,
	}
	observability.LogAsyncOperationStart(ctx, op, fields)

	var note *models.Notification
	err := e.state.Update(ctx, op, func(st *State) (Change, error) {
		live := st.PostByID(post.ID)
		if live == nil {
			return Unchanged, nil
		}
		now := e.sched.Now().UnixMilli()

		switch kind {
		case models.NotificationHeart:
			live.Hearts++
		case models.NotificationComment:
			live.Comments = append(live.Comments, models.Comment{
				ID:        newID(),
				Author:    citizen,
				Text:      CitizenCommentText,
				Timestamp: now,
				Replies:   []models.Comment{},
			})
		case models.NotificationRepost:
			st.PrependPost(newRepost(live, citizen, now))
		}

		note = &models.Notification{
			ID:                 newID(),
			Type:               kind,
			FromUser:           citizen,
			PostID:             post.ID,
			PostContentSnippet: models.Snippet(live.Content),
			Timestamp:          now,
		}
		st.PrependNotification(note)
		c := *note
		note = &c
		return ContentChanged, nil
	})

	switch {
	case err != nil:
		observability.SyntheticInteractions.WithLabelValues(string(kind), "failed").Inc()
		observability.LogAsyncOperationError(ctx, op, err, fields)
		return
	case note == nil:
		observability.SyntheticInteractions.WithLabelValues(string(kind), "skipped").Inc()
		fields["skipped"] = true
		observability.LogAsyncOperationEnd(ctx, op, fields)
		return
	}

	observability.SyntheticInteractions.WithLabelValues(string(kind), "applied").Inc()
	if e.publisher != nil {
		if err := e.publisher.PublishNotification(ctx, post.Author, *note); err != nil {
			observability.LogAsyncOperationError(ctx, op+"_publish", err, fields)
		}
	}
	observability.LogAsyncOperationEnd(ctx, op, fields)
}
