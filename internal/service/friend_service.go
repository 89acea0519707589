package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"filmmate/internal/model"
	"filmmate/internal/repository"
	"filmmate/pkg/logger"
	"filmmate/pkg/redis"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Relationship 当前用户与另一用户的关系
type Relationship string

const (
	RelationshipNone       Relationship = "none"
	RelationshipPendingOut Relationship = "pending_out" // 我已发出请求
	RelationshipPendingIn  Relationship = "pending_in"  // 对方发来请求
	RelationshipFriends    Relationship = "friends"
	RelationshipSelf       Relationship = "self"
)

// 实时通知类型
const (
	EventFriendRequest  = "friend_request"
	EventFriendAccepted = "friend_accepted"
)

// Notifier 实时通知推送（WebSocket），对方不在线时由实现方暂存
type Notifier interface {
	SendToUser(userID uint, msg []byte)
}

// Event 推送给客户端的通知
type Event struct {
	Type      string    `json:"type"`
	RequestID uint      `json:"request_id,omitempty"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Friend 好友及在线状态
type Friend struct {
	User   model.User
	Online bool
}

// FriendRequests 待处理请求总览
type FriendRequests struct {
	Incoming []model.FriendRequest
	Outgoing []model.FriendRequest
}

type FriendService struct {
	store    *repository.Store
	notifier Notifier
}

// NewFriendService 创建好友服务；notifier 可为 nil
func NewFriendService(store *repository.Store, notifier Notifier) *FriendService {
	return &FriendService{store: store, notifier: notifier}
}

// Send 发送好友请求
// 自己、已是好友、任一方向已有待处理请求都会被拒绝，且不会产生新行
func (s *FriendService) Send(ctx context.Context, fromID, toID uint) (*model.FriendRequest, error) {
	if fromID == toID {
		return nil, conflict("you cannot send a friend request to yourself")
	}

	var (
		req    *model.FriendRequest
		sender *model.User
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		to, err := tx.Users.GetByID(ctx, toID)
		if err != nil {
			return notFoundOr(err)
		}
		sender, err = tx.Users.GetByID(ctx, fromID)
		if err != nil {
			return notFoundOr(err)
		}

		friends, err := tx.Friends.AreFriends(ctx, fromID, toID)
		if err != nil {
			return err
		}
		if friends {
			return conflict("you are already friends with " + to.Username)
		}

		existing, err := tx.Friends.FindRequestBetween(ctx, fromID, toID)
		if err == nil {
			if existing.FromUserID == fromID {
				return conflict("friend request already sent to " + to.Username)
			}
			return conflict(to.Username + " has already sent you a friend request")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		req = &model.FriendRequest{FromUserID: fromID, ToUserID: toID}
		if err := tx.Friends.CreateRequest(ctx, req); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict("friend request already sent to " + to.Username)
			}
			return err
		}
		req.ToUser = *to
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("发送好友请求", zap.Uint("from", fromID), zap.Uint("to", toID), zap.Uint("request_id", req.ID))
	s.notify(toID, Event{
		Type:      EventFriendRequest,
		RequestID: req.ID,
		UserID:    fromID,
		Username:  sender.Username,
		CreatedAt: req.CreatedAt,
	})
	return req, nil
}

// SendByUsername 按用户名发送好友请求
func (s *FriendService) SendByUsername(ctx context.Context, fromID uint, username string) (*model.FriendRequest, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username is required")
	}
	to, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return s.Send(ctx, fromID, to.ID)
}

// Accept 接受请求；只有接收人可以操作
// 好友关系建立与两个方向请求的删除在同一事务内完成
func (s *FriendService) Accept(ctx context.Context, userID, requestID uint) (*model.User, error) {
	var from *model.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		req, err := tx.Friends.GetRequestTo(ctx, requestID, userID)
		if err != nil {
			return notFoundOr(err)
		}
		from = &req.FromUser

		friends, err := tx.Friends.AreFriends(ctx, req.FromUserID, userID)
		if err != nil {
			return err
		}
		if !friends {
			if err := tx.Friends.CreateFriendship(ctx, req.FromUserID, userID); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
		}
		// 同时清理可能并发产生的反向请求
		return tx.Friends.DeleteRequestsBetween(ctx, req.FromUserID, userID)
	})
	if err != nil {
		return nil, err
	}

	accepter, err := s.store.Users.GetByID(ctx, userID)
	if err == nil {
		s.notify(from.ID, Event{
			Type:      EventFriendAccepted,
			UserID:    userID,
			Username:  accepter.Username,
			CreatedAt: time.Now(),
		})
	}
	logger.Info("接受好友请求", zap.Uint("request_id", requestID), zap.Uint("user_id", userID))
	return from, nil
}

// Decline 拒绝请求；只有接收人可以操作
func (s *FriendService) Decline(ctx context.Context, userID, requestID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		req, err := tx.Friends.GetRequestTo(ctx, requestID, userID)
		if err != nil {
			return notFoundOr(err)
		}
		_, err = tx.Friends.DeleteRequest(ctx, req.ID)
		return err
	})
}

// Cancel 撤回请求；只有发起人可以操作
func (s *FriendService) Cancel(ctx context.Context, userID, requestID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		req, err := tx.Friends.GetRequestFrom(ctx, requestID, userID)
		if err != nil {
			return notFoundOr(err)
		}
		_, err = tx.Friends.DeleteRequest(ctx, req.ID)
		return err
	})
}

// Remove 解除好友关系，不是好友时返回 ErrNotFound
func (s *FriendService) Remove(ctx context.Context, userID, friendID uint) error {
	removed, err := s.store.Friends.DeleteFriendship(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	logger.Info("解除好友关系", zap.Uint("user_id", userID), zap.Uint("friend_id", friendID))
	return nil
}

// AreFriends 两人是否互为好友
func (s *FriendService) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	return s.store.Friends.AreFriends(ctx, a, b)
}

// Friends 好友列表；在线状态来自 Redis，不可用时全部为离线
func (s *FriendService) Friends(ctx context.Context, userID uint) ([]Friend, error) {
	ids, err := s.store.Friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := s.store.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	online := redis.OnlineStatus(ctx, ids)
	friends := make([]Friend, 0, len(users))
	for _, u := range users {
		friends = append(friends, Friend{User: u, Online: online[u.ID]})
	}
	return friends, nil
}

// Requests 收到与发出的待处理请求
func (s *FriendService) Requests(ctx context.Context, userID uint) (*FriendRequests, error) {
	incoming, err := s.store.Friends.Incoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.store.Friends.Outgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &FriendRequests{Incoming: incoming, Outgoing: outgoing}, nil
}

func (s *FriendService) notify(userID uint, event Event) {
	if s.notifier == nil {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		logger.Warn("序列化通知失败", zap.Error(err))
		return
	}
	s.notifier.SendToUser(userID, msg)
}

// relationships 计算 viewer 与一组用户的关系
func relationships(ctx context.Context, store *repository.Store, viewerID uint, others []uint) (map[uint]Relationship, error) {
	result := make(map[uint]Relationship, len(others))
	for _, id := range others {
		result[id] = RelationshipNone
	}
	if len(others) == 0 {
		return result, nil
	}

	friendIDs, err := store.Friends.FriendIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	friends := make(map[uint]bool, len(friendIDs))
	for _, id := range friendIDs {
		friends[id] = true
	}

	pending, err := store.Friends.PendingWith(ctx, viewerID, others)
	if err != nil {
		return nil, err
	}
	for _, req := range pending {
		if req.FromUserID == viewerID {
			result[req.ToUserID] = RelationshipPendingOut
		} else {
			result[req.FromUserID] = RelationshipPendingIn
		}
	}

	for _, id := range others {
		if friends[id] {
			result[id] = RelationshipFriends
		}
		if id == viewerID {
			result[id] = RelationshipSelf
		}
	}
	return result, nil
}
