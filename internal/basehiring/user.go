package basehiring

import (
	"fmt"
	"net/url"

	"github.com/tdnguyen/hiring-mcp/internal/htmltext"
)

// UserInfo maps a platform username to a display name and job title, used
// to attribute candidate reviews.
type UserInfo struct {
	Name  string
	Title string
}

type userListResponse struct {
	Users []struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Title    string `json:"title"`
	} `json:"users"`
}

// ListUsers fetches the account directory. Without an account token it
// returns an empty map so review attribution degrades to usernames.
func (c *Client) ListUsers() (map[string]UserInfo, error) {
	if c.accountToken == "" {
		return map[string]UserInfo{}, nil
	}

	form := url.Values{}
	form.Set(tokenField, c.accountToken)

	var response userListResponse
	if err := c.postForm(c.AccountURL+"/users", form, &response); err != nil {
		return nil, fmt.Errorf("listing account users: %w", err)
	}

	users := make(map[string]UserInfo, len(response.Users))
	for _, user := range response.Users {
		if user.Username == "" {
			continue
		}
		users[user.Username] = UserInfo{Name: user.Name, Title: user.Title}
	}

	return users, nil
}

// Review is a cleaned evaluation with the reviewer resolved to a real name.
type Review struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// BuildReviews strips evaluation HTML and attributes each review using the
// account directory. Unknown reviewers keep their username.
func BuildReviews(evaluations []Evaluation, users map[string]UserInfo) []Review {
	reviews := make([]Review, 0, len(evaluations))
	for _, eval := range evaluations {
		if eval.Content == "" {
			continue
		}

		review := Review{
			ID:      eval.ID,
			Name:    eval.Username,
			Content: htmltext.Clean(eval.Content),
		}
		if review.Name == "" {
			review.Name = "N/A"
		}

		if info, ok := users[eval.Username]; ok {
			if info.Name != "" {
				review.Name = info.Name
			}
			review.Title = info.Title
		}

		reviews = append(reviews, review)
	}

	return reviews
}

// FirstReviewText returns the plain text of the first evaluation, kept for
// summary views that show a single review line.
func FirstReviewText(evaluations []Evaluation) string {
	if len(evaluations) == 0 {
		return ""
	}
	return htmltext.Clean(evaluations[0].Content)
}
