package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user together with its follow graph edges.
// FollowingSellerIDs holds sellers this account follows; FollowerSellerIDs
// holds sellers following this account's seller identity.
type Account struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"-"`
	Seller             Seller    `json:"seller"`
	FollowingSellerIDs IDSet     `json:"following_seller_ids"`
	FollowerSellerIDs  IDSet     `json:"follower_seller_ids"`
	Email              string    `json:"email"`
	Location           string    `json:"location"`
	Bio                string    `json:"bio"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (a Account) Clone() Account {
	a.FollowingSellerIDs = a.FollowingSellerIDs.Clone()
	a.FollowerSellerIDs = a.FollowerSellerIDs.Clone()
	return a
}

func (a Account) Follows(sellerID uuid.UUID) bool {
	return a.FollowingSellerIDs.Has(sellerID)
}

func (a Account) FollowedBy(sellerID uuid.UUID) bool {
	return a.FollowerSellerIDs.Has(sellerID)
}
