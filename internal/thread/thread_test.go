package thread

// Тесты движка композиции дерева (internal/thread/thread.go).
//
//  Проверяем:
//  - полноту группировки BuildTree (каждый комментарий ровно в одной корзине);
//  - порядок и вложенность Compose (корни в исходном порядке, дети рекурсивно);
//  - сворачивание глубоких веток в HiddenReplies на maxDepth;
//  - подъём осиротевших ответов в корни с ParentDeleted и сортировкой
//    по (created_at, id).

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-community-service/internal/models"
)

var testPostID = uuid.New()

// mkComment — быстрый хелпер: id/parent/время создания.
func mkComment(id, parentID string, createdAt time.Time) models.Comment {
	return models.Comment{
		ID:         id,
		PostID:     testPostID,
		ParentID:   parentID,
		AuthorID:   uuid.New(),
		AuthorName: "user-" + id,
		Content:    "content-" + id,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestBuildTree_Completeness(t *testing.T) {
	base := time.Now().UTC()
	flat := []models.Comment{
		mkComment("a", "", base),
		mkComment("b", "a", base.Add(time.Second)),
		mkComment("c", "a", base.Add(2*time.Second)),
		mkComment("d", "b", base.Add(3*time.Second)),
		mkComment("e", "", base.Add(4*time.Second)),
	}

	tree := BuildTree(flat)

	total := 0
	for _, bucket := range tree {
		total += len(bucket)
	}
	require.Equal(t, len(flat), total)

	require.Len(t, tree[RootKey], 2)
	require.Equal(t, "a", tree[RootKey][0].ID)
	require.Equal(t, "e", tree[RootKey][1].ID)
	require.Len(t, tree["a"], 2)
	require.Len(t, tree["b"], 1)
}

func TestBuildTree_Empty(t *testing.T) {
	tree := BuildTree(nil)
	require.Empty(t, tree[RootKey])
	require.Empty(t, Compose(tree, 4))
}

func TestTree_ReplyCount(t *testing.T) {
	base := time.Now().UTC()
	tree := BuildTree([]models.Comment{
		mkComment("a", "", base),
		mkComment("b", "a", base.Add(time.Second)),
		mkComment("c", "a", base.Add(2*time.Second)),
	})

	require.Equal(t, 2, tree.ReplyCount("a"))
	require.Equal(t, 0, tree.ReplyCount("b"))
	require.Equal(t, 0, tree.ReplyCount("missing"))
}

func TestCompose_NestingAndOrder(t *testing.T) {
	base := time.Now().UTC()
	flat := []models.Comment{
		mkComment("a", "", base),
		mkComment("e", "", base.Add(4*time.Second)),
		mkComment("b", "a", base.Add(time.Second)),
		mkComment("c", "a", base.Add(2*time.Second)),
		mkComment("d", "b", base.Add(3*time.Second)),
	}

	nodes := Compose(BuildTree(flat), 4)

	require.Len(t, nodes, 2)
	require.Equal(t, "a", nodes[0].Comment.ID)
	require.Equal(t, "e", nodes[1].Comment.ID)
	require.Equal(t, 0, nodes[0].Depth)
	require.Equal(t, 2, nodes[0].DirectReplies)

	require.Len(t, nodes[0].Children, 2)
	require.Equal(t, "b", nodes[0].Children[0].Comment.ID)
	require.Equal(t, "c", nodes[0].Children[1].Comment.ID)
	require.Equal(t, 1, nodes[0].Children[0].Depth)

	require.Len(t, nodes[0].Children[0].Children, 1)
	require.Equal(t, "d", nodes[0].Children[0].Children[0].Comment.ID)
	require.Equal(t, 2, nodes[0].Children[0].Children[0].Depth)
}

// Глубокая цепочка a->b->c->d при maxDepth=2: c остаётся листом со
// счётчиком скрытых ответов вместо детей.
func TestCompose_DepthCap(t *testing.T) {
	base := time.Now().UTC()
	flat := []models.Comment{
		mkComment("a", "", base),
		mkComment("b", "a", base.Add(time.Second)),
		mkComment("c", "b", base.Add(2*time.Second)),
		mkComment("d", "c", base.Add(3*time.Second)),
	}

	nodes := Compose(BuildTree(flat), 2)

	require.Len(t, nodes, 1)
	b := nodes[0].Children[0]
	require.Equal(t, "b", b.Comment.ID)
	require.Len(t, b.Children, 1)

	c := b.Children[0]
	require.Equal(t, "c", c.Comment.ID)
	require.Equal(t, 2, c.Depth)
	require.Empty(t, c.Children)
	require.Equal(t, 1, c.HiddenReplies)
	require.Equal(t, 1, c.DirectReplies)
}

// Ответы удалённого родителя поднимаются в корни после обычных корней,
// с ParentDeleted и сортировкой по (created_at, id).
func TestCompose_Orphans(t *testing.T) {
	base := time.Now().UTC()
	flat := []models.Comment{
		mkComment("a", "", base),
		// Родитель "gone" отсутствует во входном списке.
		mkComment("z", "gone", base.Add(2*time.Second)),
		mkComment("y", "gone", base.Add(time.Second)),
		// Одинаковое время — порядок по id.
		mkComment("m", "gone2", base.Add(3*time.Second)),
		mkComment("k", "gone2", base.Add(3*time.Second)),
	}

	nodes := Compose(BuildTree(flat), 4)

	require.Len(t, nodes, 5)
	require.Equal(t, "a", nodes[0].Comment.ID)
	require.False(t, nodes[0].ParentDeleted)

	ids := []string{nodes[1].Comment.ID, nodes[2].Comment.ID, nodes[3].Comment.ID, nodes[4].Comment.ID}
	require.Equal(t, []string{"y", "z", "k", "m"}, ids)

	for _, n := range nodes[1:] {
		require.True(t, n.ParentDeleted)
		require.Equal(t, 0, n.Depth)
	}
}

// Дети осиротевшего узла разворачиваются как обычно: помечается только
// сам верхний узел ветки.
func TestCompose_OrphanKeepsSubtree(t *testing.T) {
	base := time.Now().UTC()
	flat := []models.Comment{
		mkComment("y", "gone", base),
		mkComment("x", "y", base.Add(time.Second)),
	}

	nodes := Compose(BuildTree(flat), 4)

	require.Len(t, nodes, 1)
	require.True(t, nodes[0].ParentDeleted)
	require.Len(t, nodes[0].Children, 1)
	require.Equal(t, "x", nodes[0].Children[0].Comment.ID)
	require.False(t, nodes[0].Children[0].ParentDeleted)
}
