package feed

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ABBA-DALHATU/football-network-app/internal/connections"
	"github.com/ABBA-DALHATU/football-network-app/internal/users"
	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
	pkgerrors "github.com/ABBA-DALHATU/football-network-app/pkg/errors"
	"github.com/ABBA-DALHATU/football-network-app/pkg/pagination"
)

// ServiceParams groups dependencies for the feed service.
type ServiceParams struct {
	Repo        *Repository
	Users       *users.Repository
	Connections *connections.Repository
}

// Service exposes the post feed and its interactions.
type Service interface {
	FetchPosts(ctx context.Context, callerID uuid.UUID, feedType enums.FeedType, page pagination.Page) (*PageDTO, error)
	CreatePost(ctx context.Context, callerID uuid.UUID, dto CreatePostDTO) (*PostDTO, error)
	ToggleLike(ctx context.Context, callerID, postID uuid.UUID) (*LikeResultDTO, error)
	AddComment(ctx context.Context, callerID, postID uuid.UUID, dto AddCommentDTO) (*CommentDTO, error)
}

type service struct {
	repo        *Repository
	users       *users.Repository
	connections *connections.Repository
}

// NewService builds a feed service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feed repo is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Connections == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "connections repo is required")
	}
	return &service{
		repo:        params.Repo,
		users:       params.Users,
		connections: params.Connections,
	}, nil
}

// FetchPosts returns one feed page. The connection feed shows the caller and
// their accepted partners; the discovery feed shows everyone.
func (s *service) FetchPosts(ctx context.Context, callerID uuid.UUID, feedType enums.FeedType, page pagination.Page) (*PageDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	if !feedType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid feed type")
	}
	page = pagination.NormalizePage(page.Number, page.Size)

	var authorIDs []uuid.UUID
	if feedType == enums.FeedTypeYourFeed {
		partners, err := s.connections.AcceptedPartnerIDs(ctx, callerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load connections")
		}
		authorIDs = append(partners, callerID)
	}

	posts, total, err := s.repo.ListPosts(ctx, authorIDs, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}

	items, err := s.decorate(ctx, callerID, posts)
	if err != nil {
		return nil, err
	}

	return &PageDTO{
		Items: items,
		Page:  page.Number,
		Size:  page.Size,
		Total: total,
	}, nil
}

// CreatePost authors a new post. Content is required; an image is optional.
func (s *service) CreatePost(ctx context.Context, callerID uuid.UUID, dto CreatePostDTO) (*PostDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	content := strings.TrimSpace(dto.Content)
	if content == "" && dto.ImageURL == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "post needs content or an image")
	}

	post := &models.Post{AuthorID: callerID, ImageURL: dto.ImageURL}
	if content != "" {
		post.Content = &content
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}

	items, err := s.decorate(ctx, callerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "created post missing author")
	}
	return &items[0], nil
}

// ToggleLike flips the caller's like and returns the fresh count.
func (s *service) ToggleLike(ctx context.Context, callerID, postID uuid.UUID) (*LikeResultDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := s.repo.ToggleLike(ctx, callerID, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle like")
	}
	count, err := s.repo.LikeCount(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count likes")
	}
	return &LikeResultDTO{PostID: postID, Liked: liked, LikeCount: count}, nil
}

// AddComment appends a comment to a post.
func (s *service) AddComment(ctx context.Context, callerID, postID uuid.UUID, dto AddCommentDTO) (*CommentDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	content := strings.TrimSpace(dto.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment content is required")
	}
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: callerID, Content: content}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add comment")
	}

	author, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load author")
	}
	return &CommentDTO{
		ID:        comment.ID,
		PostID:    comment.PostID,
		User:      *users.FromModel(author),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}, nil
}

func (s *service) loadPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	if postID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "post id is required")
	}
	post, err := s.repo.FindPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}
	return post, nil
}

// decorate assembles DTOs for a page of posts with a fixed number of queries:
// comments, like counts, comment counts, the caller's liked set, and one
// profile batch covering post and comment authors.
func (s *service) decorate(ctx context.Context, callerID uuid.UUID, posts []models.Post) ([]PostDTO, error) {
	if len(posts) == 0 {
		return []PostDTO{}, nil
	}

	postIDs := make([]uuid.UUID, 0, len(posts))
	authorSet := map[uuid.UUID]struct{}{}
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
		authorSet[post.AuthorID] = struct{}{}
	}

	comments, err := s.repo.ListComments(ctx, postIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	for _, comment := range comments {
		authorSet[comment.UserID] = struct{}{}
	}

	likeCounts, err := s.repo.LikeCounts(ctx, postIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count likes")
	}
	commentCounts, err := s.repo.CommentCounts(ctx, postIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count comments")
	}
	likedSet, err := s.repo.LikedSet(ctx, callerID, postIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load liked set")
	}

	authorIDs := make([]uuid.UUID, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}
	profiles, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load authors")
	}
	profileByID := make(map[uuid.UUID]users.UserDTO, len(profiles))
	for i := range profiles {
		profileByID[profiles[i].ID] = *users.FromModel(&profiles[i])
	}

	commentsByPost := make(map[uuid.UUID][]CommentDTO, len(posts))
	for _, comment := range comments {
		author, ok := profileByID[comment.UserID]
		if !ok {
			continue
		}
		commentsByPost[comment.PostID] = append(commentsByPost[comment.PostID], CommentDTO{
			ID:        comment.ID,
			PostID:    comment.PostID,
			User:      author,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
		})
	}

	items := make([]PostDTO, 0, len(posts))
	for _, post := range posts {
		author, ok := profileByID[post.AuthorID]
		if !ok {
			continue
		}
		postComments := commentsByPost[post.ID]
		if postComments == nil {
			postComments = []CommentDTO{}
		}
		items = append(items, PostDTO{
			ID:            post.ID,
			Author:        author,
			Content:       post.Content,
			ImageURL:      post.ImageURL,
			LikeCount:     likeCounts[post.ID],
			CommentCount:  commentCounts[post.ID],
			LikedByCaller: likedSet[post.ID],
			Comments:      postComments,
			CreatedAt:     post.CreatedAt,
		})
	}
	return items, nil
}
