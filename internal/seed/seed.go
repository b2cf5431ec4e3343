// Package seed provides database seeding utilities for development and
// testing. Generated content mirrors what the community actually looks like:
// Korean posts about running a one-person online shop.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"sellerhood/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var (
	nicknamePool = []string{
		"왕초보셀러", "스마트혜진", "쿠팡지기", "마진왕", "포장의달인",
		"새벽발송러", "윙셀러", "리뷰부자", "재고요정", "환불방어왕",
		"셀러삼년차", "부업으로시작", "광고비아까워", "한솔맘", "동대문키드",
		"위탁판매러", "사입삼촌", "총알배송", "단골장인", "정산기다림",
	}

	platformPool = []string{
		"스마트스토어", "쿠팡", "11번가", "지마켓", "옥션", "자사몰", "알리익스프레스",
	}

	experiencePool = []string{
		"준비중", "6개월 미만", "1년차", "2-3년차", "3년 이상",
	}

	expectationPool = []string{
		"같은 고민을 하는 분들과 이야기하고 싶어요",
		"꿀팁을 얻어가고 싶습니다",
		"혼자 일하니 너무 외로워서요",
		"매출 늘리는 방법이 궁금해요",
	}

	titleTemplates = map[string][]string{
		models.CategorySellerChat: {
			"오늘 주문 %d건 들어왔네요",
			"다들 점심 드셨나요? 포장하다가 하루가 다 가요",
			"%s 수수료 또 올랐다는 소문 들으셨어요?",
			"혼자 일하니까 말할 사람이 없어서 여기 옵니다",
		},
		models.CategoryStress: {
			"진상 고객 때문에 현타 옵니다",
			"반품 사유가 '그냥 변심'... %d번째예요",
			"별점 테러 당했어요 ㅠㅠ",
			"택배사 파업에 고객 항의까지, 힘든 하루",
		},
		models.CategoryTips: {
			"%s 상위노출 시도해본 후기 공유합니다",
			"포장 자재 싸게 사는 곳 정리해봤어요",
			"광고비 아끼는 %d가지 방법",
			"사진 직접 찍는 분들을 위한 조명 세팅",
		},
		models.CategoryWorry: {
			"월 매출 %d만원, 계속 해야 할까요?",
			"직장 그만두고 전업 셀러 고민중입니다",
			"카테고리를 바꿔야 하나 고민이에요",
			"세금 신고가 처음인데 너무 막막해요",
		},
	}

	contentSentences = []string{
		"다들 어떻게 버티고 계신가요?",
		"조언 부탁드립니다.",
		"저만 그런 건 아니겠죠?",
		"내일은 좀 나아지길 바라면서 씁니다.",
		"경험 있으신 분들 댓글 남겨주세요.",
		"처음엔 쉬워 보였는데 막상 해보니 다르네요.",
		"그래도 단골이 생기는 재미로 합니다.",
		"정산일만 기다리는 중입니다.",
	}

	commentPool = []string{
		"저도 똑같은 경험 있어요, 힘내세요!",
		"좋은 정보 감사합니다.",
		"와 이건 몰랐네요.",
		"동감합니다 ㅠㅠ",
		"저는 이렇게 해결했어요. 쪽지 주시면 알려드릴게요.",
		"응원합니다!",
	}
)

// Seed populates the database with test data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("starting seed: %d users, %d posts", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("warning: could not clear all existing data, continuing anyway")
		}
	}

	f := NewFactory(db, SeedOptions{})

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("created %d users", len(users))

	if len(users) == 0 {
		return nil
	}

	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[r.Intn(len(users))]
		category := models.Categories[r.Intn(len(models.Categories))]
		post, err := f.CreatePost(author, category)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("created %d posts", len(posts))

	// Engagement: a few comments and likes per post.
	for _, post := range posts {
		for j := 0; j < r.Intn(4); j++ {
			commenter := users[r.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
		}
		likers := r.Intn(len(users) + 1)
		for _, u := range users[:likers] {
			if err := f.CreateLike(u, post); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
		}
	}

	log.Println("seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("clearing existing data")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE likes, comments, posts, password_resets, profiles, users RESTART IDENTITY CASCADE;`).Error
	}
	for _, table := range []string{"likes", "comments", "posts", "password_resets", "profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
