// Package thread — движок композиции дерева комментариев: группировка
// плоского, уже упорядоченного по времени списка в корзины parent→children
// и разворачивание в дерево с ограничением глубины отрисовки.
//
// Пакет чистый: не ходит в хранилище и ничего не мутирует; один и тот же
// вход всегда даёт один и тот же результат.
package thread

import (
	"sort"

	"github.com/pribylovaa/go-community-service/internal/models"
)

// RootKey — сентинел-корзина для комментариев без родителя.
const RootKey = "root"

// Tree — корзины parent_id → прямые дети (в порядке входного списка).
type Tree map[string][]models.Comment

// BuildTree группирует плоский список по parent_id. Каждый комментарий
// попадает ровно в одну корзину; суммарный размер корзин равен длине входа.
// Битые ссылки (родитель уже удалён) не являются ошибкой: корзина остаётся
// под исходным ключом, её разбирает Compose.
func BuildTree(flat []models.Comment) Tree {
	t := make(Tree, len(flat)/2+1)

	for _, c := range flat {
		key := c.ParentID
		if key == "" {
			key = RootKey
		}

		t[key] = append(t[key], c)
	}

	return t
}

// ReplyCount возвращает число прямых ответов на комментарий
// (внуки не считаются).
func (t Tree) ReplyCount(id string) int {
	return len(t[id])
}

// Node — узел развёрнутого дерева для отрисовки.
type Node struct {
	Comment models.Comment
	// Depth — глубина узла (корень = 0).
	Depth int
	// ParentDeleted выставляется у осиротевших веток: родитель был удалён,
	// ответ поднимается на верхний уровень с пометкой для рендера.
	ParentDeleted bool
	// Children — прямые дети, развёрнутые рекурсивно до maxDepth.
	Children []Node
	// DirectReplies — число прямых ответов (внуки не считаются);
	// у корневых узлов показывается рядом с комментарием.
	DirectReplies int
	// HiddenReplies — на глубине maxDepth дети не разворачиваются;
	// здесь их количество для ленивого «показать ещё».
	HiddenReplies int
}

// Compose разворачивает дерево в список корневых узлов.
// Порядок: сначала обычные корни (в порядке корзины RootKey), затем
// осиротевшие ответы, отсортированные по (created_at, id).
// На глубине maxDepth разворачивание останавливается: HiddenReplies узла
// равен размеру корзины его id.
func Compose(t Tree, maxDepth int) []Node {
	if maxDepth < 1 {
		maxDepth = 1
	}

	roots := t[RootKey]
	out := make([]Node, 0, len(roots))
	for _, c := range roots {
		out = append(out, expand(t, c, 0, maxDepth, false))
	}

	for _, c := range orphans(t) {
		out = append(out, expand(t, c, 0, maxDepth, true))
	}

	return out
}

// expand рекурсивно строит узел; на depth == maxDepth дети сворачиваются
// в счётчик.
func expand(t Tree, c models.Comment, depth, maxDepth int, orphan bool) Node {
	children := t[c.ID]
	n := Node{
		Comment:       c,
		Depth:         depth,
		ParentDeleted: orphan,
		DirectReplies: len(children),
	}

	if depth >= maxDepth {
		n.HiddenReplies = len(children)
		return n
	}

	if len(children) > 0 {
		n.Children = make([]Node, 0, len(children))
		for _, child := range children {
			n.Children = append(n.Children, expand(t, child, depth+1, maxDepth, false))
		}
	}

	return n
}

// orphans собирает комментарии из корзин, чей ключ не указывает ни на один
// комментарий входного списка (родитель удалён).
func orphans(t Tree) []models.Comment {
	present := make(map[string]struct{})
	for _, bucket := range t {
		for _, c := range bucket {
			present[c.ID] = struct{}{}
		}
	}

	var out []models.Comment
	for key, bucket := range t {
		if key == RootKey {
			continue
		}

		if _, ok := present[key]; ok {
			continue
		}

		out = append(out, bucket...)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}

		return out[i].ID < out[j].ID
	})

	return out
}
