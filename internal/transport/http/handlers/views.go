package handlers

import (
	"time"

	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/storage"
	"github.com/pribylovaa/go-community-service/internal/thread"
)

// Вьюхи REST-ответов. Доменные модели наружу не отдаются:
// формат ответа — отдельный контракт с фронтом.

type commentView struct {
	ID              string    `json:"id"`
	PostID          string    `json:"post_id"`
	ParentID        string    `json:"parent_id,omitempty"`
	AuthorID        string    `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	AuthorAvatarURL string    `json:"author_avatar_url,omitempty"`
	Content         string    `json:"content"`
	ReplyToAuthor   string    `json:"reply_to_author,omitempty"`
	ReplyToSnippet  string    `json:"reply_to_snippet,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newCommentView(c models.Comment) commentView {
	return commentView{
		ID:              c.ID,
		PostID:          c.PostID.String(),
		ParentID:        c.ParentID,
		AuthorID:        c.AuthorID.String(),
		AuthorName:      c.AuthorName,
		AuthorAvatarURL: c.AuthorAvatarURL,
		Content:         c.Content,
		ReplyToAuthor:   c.ReplyToAuthor,
		ReplyToSnippet:  c.ReplyToSnippet,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func newCommentViews(cs []models.Comment) []commentView {
	out := make([]commentView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCommentView(c))
	}
	return out
}

type threadNodeView struct {
	Comment       commentView      `json:"comment"`
	Depth         int              `json:"depth"`
	ParentDeleted bool             `json:"parent_deleted,omitempty"`
	DirectReplies int              `json:"direct_replies"`
	HiddenReplies int              `json:"hidden_replies,omitempty"`
	Children      []threadNodeView `json:"children,omitempty"`
}

func newThreadView(nodes []thread.Node) []threadNodeView {
	out := make([]threadNodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, threadNodeView{
			Comment:       newCommentView(n.Comment),
			Depth:         n.Depth,
			ParentDeleted: n.ParentDeleted,
			DirectReplies: n.DirectReplies,
			HiddenReplies: n.HiddenReplies,
			Children:      newThreadView(n.Children),
		})
	}
	return out
}

type reactionSummaryView struct {
	// Counts — агрегат по ключам эмодзи; пустые корзины не включаются.
	Counts map[string]int64 `json:"counts"`
	// Glyphs — ключ -> символ для рендера без таблицы на клиенте.
	Glyphs map[string]string `json:"glyphs,omitempty"`
	// Own — ключ реакции вызывающего; пустой для анонима/без реакции.
	Own string `json:"own,omitempty"`
}

func newReactionSummaryView(s models.ReactionSummary) reactionSummaryView {
	view := reactionSummaryView{
		Counts: make(map[string]int64, len(s.Counts)),
		Glyphs: make(map[string]string, len(s.Counts)),
		Own:    string(s.Own),
	}
	for key, n := range s.Counts {
		view.Counts[string(key)] = n
		view.Glyphs[string(key)] = models.GlyphForKey(key)
	}
	return view
}

type typingUserView struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

func newTypingViews(ps []models.TypingPresence) []typingUserView {
	out := make([]typingUserView, 0, len(ps))
	for _, p := range ps {
		out = append(out, typingUserView{
			UserID:      p.UserID.String(),
			DisplayName: p.DisplayName,
		})
	}
	return out
}

type uploadInfoView struct {
	UploadURL      string            `json:"upload_url"`
	Key            string            `json:"key"`
	ExpiresSeconds int64             `json:"expires_seconds"`
	Headers        map[string]string `json:"headers,omitempty"`
}

func newUploadInfoView(info *storage.UploadInfo) uploadInfoView {
	return uploadInfoView{
		UploadURL:      info.UploadURL,
		Key:            info.Key,
		ExpiresSeconds: int64(info.Expires.Seconds()),
		Headers:        info.RequiredHeader,
	}
}
