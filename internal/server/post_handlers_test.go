package server

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestCreatePostAppearsInFilteredList(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "writer@example.com", "이한솔")

	// Warm the list cache before the write so the test also covers the
	// invalidation path, not just a cold read.
	fetchPosts(t, app, "?category=tips")

	createPostViaAPI(t, app, token, "스마트스토어 배송 꿀팁", "tips")
	createPostViaAPI(t, app, token, "고민이 있습니다", "worry")
	id := createPostViaAPI(t, app, token, "쿠팡 정산 꿀팁", "tips")

	posts := fetchPosts(t, app, "?category=tips&order_by=created_at&order=desc")
	ids := postIDs(posts)

	require.Equal(t, 1, countID(ids, id), "post must appear exactly once")
	for _, p := range posts {
		require.Equal(t, "tips", p["category"])
	}
	// Newest first.
	require.Equal(t, id, ids[0])
}

func TestCreatePostRequiresAuth(t *testing.T) {
	_, app := setupTestServer(t)

	resp, _ := doJSON(t, app, "POST", "/api/posts/", "", fiber.Map{
		"title": "익명 글", "content": "내용", "category": "tips",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePostRejectsUnknownCategory(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "writer2@example.com", "필자")

	resp, _ := doJSON(t, app, "POST", "/api/posts/", token, fiber.Map{
		"title": "제목", "content": "내용", "category": "free_board",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetPostMasksNickname(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "hansol@example.com", "이한솔")
	id := createPostViaAPI(t, app, token, "닉네임 노출 확인", "seller_chat")

	resp, body := doJSON(t, app, "GET", posturl(id), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	post := body["post"].(map[string]any)
	author := post["author"].(map[string]any)
	require.Equal(t, "이**", author["display_name"])
}

func TestAnonymousPostShowsAnonymousLabel(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "shy@example.com", "부끄럼")

	resp, body := doJSON(t, app, "POST", "/api/posts/", token, fiber.Map{
		"title": "익명으로 올립니다", "content": "본문", "category": "worry",
		"is_anonymous": true,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	post := body["post"].(map[string]any)
	author := post["author"].(map[string]any)
	require.Equal(t, "익명", author["display_name"])
	require.Empty(t, author["avatar_url"])
}

func TestGetPostCountsView(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "viewer@example.com", "독자")
	id := createPostViaAPI(t, app, token, "조회수 테스트", "seller_chat")

	_, body := doJSON(t, app, "GET", posturl(id), "", nil)
	first := body["post"].(map[string]any)["view_count"].(float64)
	require.Equal(t, float64(1), first)

	_, body = doJSON(t, app, "GET", posturl(id), "", nil)
	second := body["post"].(map[string]any)["view_count"].(float64)
	require.Equal(t, float64(2), second)
}

func TestGetMissingPost(t *testing.T) {
	_, app := setupTestServer(t)

	resp, _ := doJSON(t, app, "GET", "/api/posts/9999", "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/api/posts/not-a-number", "", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdatePostByNonAuthorForbidden(t *testing.T) {
	_, app := setupTestServer(t)

	owner := signupUser(t, app, "owner@example.com", "주인")
	other := signupUser(t, app, "other@example.com", "남남")
	id := createPostViaAPI(t, app, owner, "내 글", "tips")

	resp, _ := doJSON(t, app, "PUT", posturl(id), other, fiber.Map{
		"title": "훔친 글", "content": "내용", "category": "tips",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, app, "PUT", posturl(id), owner, fiber.Map{
		"title": "고친 글", "content": "내용", "category": "tips",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "고친 글", body["post"].(map[string]any)["title"])
}

func TestDeletePostRemovesFromList(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "gone@example.com", "삭제왕")
	id := createPostViaAPI(t, app, token, "곧 사라질 글", "stress")

	resp, _ := doJSON(t, app, "DELETE", posturl(id), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, 0, countID(postIDs(fetchPosts(t, app, "?category=stress")), id))

	resp, _ = doJSON(t, app, "GET", posturl(id), "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestToggleLikeTwiceReverts(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "liker@example.com", "좋아요")
	id := createPostViaAPI(t, app, token, "좋아요 테스트", "seller_chat")

	resp, body := doJSON(t, app, "POST", posturl(id)+"/like", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["is_liked"])
	require.Equal(t, float64(1), body["like_count"])

	resp, body = doJSON(t, app, "POST", posturl(id)+"/like", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, false, body["is_liked"])
	require.Equal(t, float64(0), body["like_count"])
}

func TestToggleLikeRequiresAuth(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "author3@example.com", "작가")
	id := createPostViaAPI(t, app, token, "글", "tips")

	resp, _ := doJSON(t, app, "POST", posturl(id)+"/like", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLikeStatusForAnonymousReader(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "author4@example.com", "작가")
	id := createPostViaAPI(t, app, token, "글", "tips")

	// No token at all: 200 with is_liked=false, never an auth error.
	resp, body := doJSON(t, app, "GET", posturl(id)+"/like", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, false, body["is_liked"])

	// A signed-in reader who liked it sees true.
	_, _ = doJSON(t, app, "POST", posturl(id)+"/like", token, nil)
	resp, body = doJSON(t, app, "GET", posturl(id)+"/like", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["is_liked"])
}

func TestLikeCountVisibleInList(t *testing.T) {
	_, app := setupTestServer(t)

	token := signupUser(t, app, "counter@example.com", "집계")
	id := createPostViaAPI(t, app, token, "집계 테스트", "tips")

	// Warm the list cache, then like: the cached list entry must reflect
	// the new count without a full refetch.
	fetchPosts(t, app, "?category=tips")
	_, _ = doJSON(t, app, "POST", posturl(id)+"/like", token, nil)

	for _, p := range fetchPosts(t, app, "?category=tips") {
		if uint(p["id"].(float64)) == id {
			require.Equal(t, float64(1), p["like_count"])
			return
		}
	}
	t.Fatalf("post %d not found in list", id)
}

func posturl(id uint) string {
	return fmt.Sprintf("/api/posts/%d", id)
}
