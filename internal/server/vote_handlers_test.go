package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voteBody(vote bool, reason string) map[string]interface{} {
	return map[string]interface{}{"vote": vote, "reason": reason}
}

func TestVoteGlobalPost(t *testing.T) {
	s := newTestServer(t)
	school := seedSchool(t, s, "State University", "state-u")
	author := seedUser(t, s, "author@example.com", models.RoleUser, school.ID)

	voters := make([]*models.User, 0, 5)
	for i := 0; i < 5; i++ {
		voters = append(voters, seedUser(t, s,
			fmt.Sprintf("voter%d@example.com", i+1), models.RoleGlobalReviewer, school.ID))
	}

	voteApp := func(voter *models.User) *fiber.App {
		app := fiber.New()
		app.Post("/votes/posts/:id", actAs(models.PrincipalFromUser(voter), s.VoteGlobalPost))
		return app
	}

	t.Run("Consensus auto-approves at the fifth vote", func(t *testing.T) {
		post := seedPost(t, s, &models.Post{
			SchoolID: school.ID,
			AuthorID: &author.ID,
			IsGlobal: true,
		})

		// approve x4, then one reject; 4/5 = 0.8 crosses the threshold.
		for i, voter := range voters {
			approve := i < 4
			req := jsonRequest(t, http.MethodPost,
				fmt.Sprintf("/votes/posts/%d", post.ID),
				voteBody(approve, "cross-school check"))
			resp, err := voteApp(voter).Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			var result struct {
				TotalVotes   int64       `json:"total_votes"`
				AutoApproved bool        `json:"auto_approved"`
				Post         models.Post `json:"post"`
			}
			decodeBody(t, resp, &result)
			assert.Equal(t, int64(i+1), result.TotalVotes)
			if i < 4 {
				assert.False(t, result.AutoApproved)
				assert.Equal(t, models.StatusPending, result.Post.Status)
			} else {
				assert.True(t, result.AutoApproved)
				assert.Equal(t, models.StatusApproved, result.Post.Status)
				require.NotNil(t, result.Post.ReviewedBy)
				assert.Equal(t, voters[4].ID, *result.Post.ReviewedBy)
				require.NotNil(t, result.Post.ReviewComment)
				assert.Equal(t, "cross-school vote passed", *result.Post.ReviewComment)
			}
		}

		// One vote row per voter.
		var voteCount int64
		s.db.Model(&models.GlobalReviewLog{}).
			Where("post_id = ? AND action = ?", post.ID, models.GlobalActionVote).
			Count(&voteCount)
		assert.Equal(t, int64(5), voteCount)
	})

	t.Run("Duplicate vote", func(t *testing.T) {
		post := seedPost(t, s, &models.Post{SchoolID: school.ID, IsGlobal: true})
		app := voteApp(voters[0])

		req := jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/votes/posts/%d", post.ID), voteBody(true, ""))
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		req = jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/votes/posts/%d", post.ID), voteBody(false, "changed my mind"))
		resp, err = app.Test(req)
		require.NoError(t, err)

		var body map[string]string
		decodeBody(t, resp, &body)
		assert.Equal(t, "ALREADY_VOTED", body["code"])
	})

	t.Run("Vote value required", func(t *testing.T) {
		post := seedPost(t, s, &models.Post{SchoolID: school.ID, IsGlobal: true})

		req := jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/votes/posts/%d", post.ID),
			map[string]string{"reason": "no vote field"})
		resp, err := voteApp(voters[0]).Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("School-local post", func(t *testing.T) {
		post := seedPost(t, s, &models.Post{SchoolID: school.ID})

		req := jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/votes/posts/%d", post.ID), voteBody(true, ""))
		resp, err := voteApp(voters[0]).Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Regular user forbidden", func(t *testing.T) {
		post := seedPost(t, s, &models.Post{SchoolID: school.ID, IsGlobal: true})

		req := jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/votes/posts/%d", post.ID), voteBody(true, ""))
		resp, err := voteApp(author).Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestGetVoteTally(t *testing.T) {
	s := newTestServer(t)
	school := seedSchool(t, s, "State University", "state-u")
	post := seedPost(t, s, &models.Post{SchoolID: school.ID, IsGlobal: true})

	for i := 0; i < 3; i++ {
		voter := seedUser(t, s,
			fmt.Sprintf("tally%d@example.com", i+1), models.RoleGlobalReviewer, school.ID)
		approve := i < 2
		require.NoError(t, s.db.Create(&models.GlobalReviewLog{
			PostID: post.ID,
			UserID: &voter.ID,
			Action: models.GlobalActionVote,
			Vote:   &approve,
		}).Error)
	}

	app := fiber.New()
	app.Get("/votes/posts/:id/tally", s.GetVoteTally)
	app.Get("/votes/posts/:id/logs", s.GetGlobalReviewLogs)

	t.Run("Tally", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			fmt.Sprintf("/votes/posts/%d/tally", post.ID), nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]float64
		decodeBody(t, resp, &body)
		assert.Equal(t, float64(3), body["total_votes"])
		assert.Equal(t, float64(2), body["approve_votes"])
	})

	t.Run("Logs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			fmt.Sprintf("/votes/posts/%d/logs", post.ID), nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		var body struct {
			Logs []models.GlobalReviewLog `json:"logs"`
		}
		decodeBody(t, resp, &body)
		assert.Len(t, body.Logs, 3)
	})
}

func TestGetMyVotes(t *testing.T) {
	s := newTestServer(t)
	school := seedSchool(t, s, "State University", "state-u")
	voter := seedUser(t, s, "voter@example.com", models.RoleGlobalReviewer, school.ID)
	other := seedUser(t, s, "other@example.com", models.RoleGlobalReviewer, school.ID)

	approve := true
	for i := 0; i < 2; i++ {
		post := seedPost(t, s, &models.Post{SchoolID: school.ID, IsGlobal: true})
		require.NoError(t, s.db.Create(&models.GlobalReviewLog{
			PostID: post.ID,
			UserID: &voter.ID,
			Action: models.GlobalActionVote,
			Vote:   &approve,
		}).Error)
	}
	otherPost := seedPost(t, s, &models.Post{SchoolID: school.ID, IsGlobal: true})
	require.NoError(t, s.db.Create(&models.GlobalReviewLog{
		PostID: otherPost.ID,
		UserID: &other.ID,
		Action: models.GlobalActionVote,
		Vote:   &approve,
	}).Error)

	app := fiber.New()
	app.Get("/votes/mine", actAs(models.PrincipalFromUser(voter), s.GetMyVotes))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/votes/mine", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Logs []models.GlobalReviewLog `json:"logs"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Logs, 2)
	for _, l := range body.Logs {
		require.NotNil(t, l.UserID)
		assert.Equal(t, voter.ID, *l.UserID)
	}
}
