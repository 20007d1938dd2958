package models

import "newsdesk/internal/gateway"

// User is a profile document. Its ID equals the unique subject value of the
// authentication identity that registered it.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Nickname string   `json:"nickname"`
	Bio      string   `json:"bio"`
	Avatar   string   `json:"avatar"`
	NewsIDs  []string `json:"newsIds"`
}

// Fields returns the full document payload written at registration.
func (u User) Fields() gateway.Fields {
	newsIDs := u.NewsIDs
	if newsIDs == nil {
		newsIDs = []string{}
	}
	return gateway.Fields{
		"email":    u.Email,
		"nickname": u.Nickname,
		"bio":      u.Bio,
		"avatar":   u.Avatar,
		"newsIds":  newsIDs,
	}
}

// UserFromDocument rebuilds a User from a gateway document.
func UserFromDocument(doc gateway.Document) User {
	u := User{ID: doc.ID}
	u.Email, _ = doc.Fields["email"].(string)
	u.Nickname, _ = doc.Fields["nickname"].(string)
	u.Bio, _ = doc.Fields["bio"].(string)
	u.Avatar, _ = doc.Fields["avatar"].(string)
	u.NewsIDs = stringSlice(doc.Fields["newsIds"])
	return u
}

// Identity is the authenticated principal delivered by the session provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
