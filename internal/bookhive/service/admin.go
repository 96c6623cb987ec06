package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/covers"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/importer"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/search"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

const (
	// defaultAdminPageSize is the admin book table page size.
	defaultAdminPageSize = 10
	// topRatedWindow bounds how far back the dashboard looks for
	// recently updated highly rated books.
	topRatedWindow = 30 * 24 * time.Hour
	// topRatedCount is how many top-rated books the dashboard shows.
	topRatedCount = 4
)

// recentSearches feeds the dashboard widget. There is no search log to
// aggregate, so the list is fixed.
var recentSearches = []string{"fantasy", "mystery", "sci-fi", "romance", "thriller"}

// AdminService backs the staff console: user management, catalog CRUD,
// cover uploads, genre curation, CSV imports and the dashboard.
type AdminService struct {
	store        *store.Store
	index        *search.SearchIndex
	importer     *importer.Importer
	covers       *covers.Processor
	coverStorage *covers.Storage
	logger       *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	store *store.Store,
	index *search.SearchIndex,
	imp *importer.Importer,
	coverProcessor *covers.Processor,
	coverStorage *covers.Storage,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		store:        store,
		index:        index,
		importer:     imp,
		covers:       coverProcessor,
		coverStorage: coverStorage,
		logger:       logger,
	}
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListUsers returns every account as a full profile. Unmigrated legacy
// saved lists are shown as-is; the migration itself only runs when the
// user touches their own list.
func (s *AdminService) ListUsers(ctx context.Context) ([]*UserDetail, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	details := make([]*UserDetail, 0, len(users))
	for _, u := range users {
		if u.NeedsLegacyMigration() {
			u.MigrateLegacySaved()
		}

		genres, err := resolveFavoriteGenres(ctx, s.store, u.FavoriteGenres)
		if err != nil {
			return nil, err
		}

		saved := u.SavedBookIDs
		if saved == nil {
			saved = []int64{}
		}

		details = append(details, &UserDetail{
			ID:                   u.ID,
			FirstName:            u.FirstName,
			LastName:             u.LastName,
			Username:             u.Username,
			Email:                u.Email,
			IsAdmin:              u.IsAdmin,
			FavoriteGenres:       genres,
			PreferredLanguage:    u.PreferredLanguage,
			NotificationsEnabled: u.NotificationsEnabled,
			SavedBooks:           saved,
			CreatedAt:            u.CreatedAt,
			UpdatedAt:            u.UpdatedAt,
		})
	}
	return details, nil
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, userID int64) (*MessageResponse, error) {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", userID)

	return &MessageResponse{Message: "User deleted successfully"}, nil
}

// AdminBookPage is one page of the admin book table.
type AdminBookPage struct {
	Books      []*domain.Book `json:"books"`
	HasMore    bool           `json:"has_more"`
	TotalCount int64          `json:"total_count"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
}

// Books pages through the catalog for the admin table, optionally
// filtered by a search term over title, author, genres and ISBN.
func (s *AdminService) Books(ctx context.Context, query string, offset, limit int) (*AdminBookPage, error) {
	if limit <= 0 {
		limit = defaultAdminPageSize
	}
	if offset < 0 {
		offset = 0
	}

	books, total, err := s.store.AdminSearchBooks(ctx, strings.TrimSpace(query), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}

	return &AdminBookPage{
		Books:      books,
		HasMore:    int64(offset+limit) < total,
		TotalCount: total,
		Offset:     offset,
		Limit:      limit,
	}, nil
}

// CreateBookRequest carries the fields for a new catalog entry.
type CreateBookRequest struct {
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	Description     string     `json:"description,omitempty"`
	CoverImage      string     `json:"cover_image,omitempty"`
	PublishDate     *time.Time `json:"publish_date,omitempty"`
	Rating          float64    `json:"rating,omitempty"`
	LikedPercentage float64    `json:"liked_percentage,omitempty"`
	Genres          []string   `json:"genres,omitempty"`
	Language        string     `json:"language,omitempty"`
	PageCount       int        `json:"page_count,omitempty"`
	IsFree          bool       `json:"is_free,omitempty"`
	Publisher       string     `json:"publisher,omitempty"`
	BuyNowURL       string     `json:"buy_now_url,omitempty"`
	PreviewURL      string     `json:"preview_url,omitempty"`
	DownloadURL     string     `json:"download_url,omitempty"`
}

// CreateBook adds a book to the catalog and indexes it for search.
func (s *AdminService) CreateBook(ctx context.Context, req *CreateBookRequest) (*domain.Book, error) {
	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	isbn := strings.TrimSpace(req.ISBN)
	if title == "" || author == "" || isbn == "" {
		return nil, domainerrors.Validation("Title, author and ISBN are required")
	}

	if _, err := s.store.GetBookByISBN(ctx, isbn); err == nil {
		return nil, domainerrors.AlreadyExists("A book with this ISBN already exists")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, fmt.Errorf("check isbn: %w", err)
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = domain.DefaultLanguage
	}

	book := &domain.Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		Description:     normalizeDescription(req.Description),
		CoverImage:      strings.TrimSpace(req.CoverImage),
		PublishDate:     req.PublishDate,
		Rating:          req.Rating,
		LikedPercentage: req.LikedPercentage,
		Genres:          cleanGenreNames(req.Genres),
		Language:        language,
		PageCount:       req.PageCount,
		IsFree:          req.IsFree,
		Publisher:       strings.TrimSpace(req.Publisher),
		BuyNowURL:       strings.TrimSpace(req.BuyNowURL),
		PreviewURL:      strings.TrimSpace(req.PreviewURL),
		DownloadURL:     strings.TrimSpace(req.DownloadURL),
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.indexBook(book)
	s.logger.Info("book created", "book_id", book.ID, "isbn", book.ISBN)

	return book, nil
}

// UpdateBookRequest patches book fields. Nil fields are untouched.
type UpdateBookRequest struct {
	Title           *string    `json:"title,omitempty"`
	Author          *string    `json:"author,omitempty"`
	ISBN            *string    `json:"isbn,omitempty"`
	Description     *string    `json:"description,omitempty"`
	CoverImage      *string    `json:"cover_image,omitempty"`
	PublishDate     *time.Time `json:"publish_date,omitempty"`
	Rating          *float64   `json:"rating,omitempty"`
	LikedPercentage *float64   `json:"liked_percentage,omitempty"`
	Genres          *[]string  `json:"genres,omitempty"`
	Language        *string    `json:"language,omitempty"`
	PageCount       *int       `json:"page_count,omitempty"`
	IsFree          *bool      `json:"is_free,omitempty"`
	Publisher       *string    `json:"publisher,omitempty"`
	BuyNowURL       *string    `json:"buy_now_url,omitempty"`
	PreviewURL      *string    `json:"preview_url,omitempty"`
	DownloadURL     *string    `json:"download_url,omitempty"`
}

// UpdateBook applies a partial update and reindexes the book.
func (s *AdminService) UpdateBook(ctx context.Context, bookID int64, req *UpdateBookRequest) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, domainerrors.NotFound("Book not found")
	}

	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.ISBN != nil {
		book.ISBN = strings.TrimSpace(*req.ISBN)
	}
	if req.Description != nil {
		book.Description = normalizeDescription(*req.Description)
	}
	if req.CoverImage != nil {
		book.CoverImage = strings.TrimSpace(*req.CoverImage)
	}
	if req.PublishDate != nil {
		book.PublishDate = req.PublishDate
	}
	if req.Rating != nil {
		book.Rating = *req.Rating
	}
	if req.LikedPercentage != nil {
		book.LikedPercentage = *req.LikedPercentage
	}
	if req.Genres != nil {
		book.Genres = cleanGenreNames(*req.Genres)
	}
	if req.Language != nil {
		lang := strings.TrimSpace(*req.Language)
		if lang == "" {
			lang = domain.DefaultLanguage
		}
		book.Language = lang
	}
	if req.PageCount != nil {
		book.PageCount = *req.PageCount
	}
	if req.IsFree != nil {
		book.IsFree = *req.IsFree
	}
	if req.Publisher != nil {
		book.Publisher = strings.TrimSpace(*req.Publisher)
	}
	if req.BuyNowURL != nil {
		book.BuyNowURL = strings.TrimSpace(*req.BuyNowURL)
	}
	if req.PreviewURL != nil {
		book.PreviewURL = strings.TrimSpace(*req.PreviewURL)
	}
	if req.DownloadURL != nil {
		book.DownloadURL = strings.TrimSpace(*req.DownloadURL)
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.indexBook(book)
	s.logger.Info("book updated", "book_id", book.ID)

	return book, nil
}

// DeleteBook removes a book along with its index entry and stored cover.
func (s *AdminService) DeleteBook(ctx context.Context, bookID int64) (*MessageResponse, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, domainerrors.NotFound("Book not found")
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return nil, fmt.Errorf("delete book: %w", err)
	}

	if err := s.index.DeleteBook(bookID); err != nil {
		s.logger.Warn("remove book from index", "book_id", bookID, "error", err)
	}
	if err := s.coverStorage.Delete(bookID); err != nil {
		s.logger.Warn("remove stored cover", "book_id", bookID, "error", err)
	}

	s.logger.Info("book deleted", "book_id", bookID)

	return &MessageResponse{Message: "Book deleted successfully"}, nil
}

// UploadCover processes an uploaded cover image, stores it on disk and
// stamps the blurhash placeholder onto the record.
func (s *AdminService) UploadCover(ctx context.Context, bookID int64, data []byte) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, domainerrors.NotFound("Book not found")
	}

	result, err := s.covers.Process(bookID, data)
	if err != nil {
		return nil, domainerrors.Validation("Invalid or unsupported image file").WithCause(err)
	}

	book.CoverBlurHash = result.BlurHash
	book.CoverImage = fmt.Sprintf("/api/books/%d/cover", bookID)
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	return book, nil
}

// AddGenresRequest names one genre or several to create.
type AddGenresRequest struct {
	Name  string   `json:"name,omitempty"`
	Names []string `json:"names,omitempty"`
}

// AddGenresResult splits the submitted names into freshly created ones
// and ones that already existed.
type AddGenresResult struct {
	Created  []string `json:"created"`
	Existing []string `json:"existing"`
}

// AddGenres creates genres by name, reporting which names were new.
func (s *AdminService) AddGenres(ctx context.Context, req *AddGenresRequest) (*AddGenresResult, error) {
	names := req.Names
	if len(names) == 0 && strings.TrimSpace(req.Name) != "" {
		names = []string{req.Name}
	}
	names = cleanGenreNames(names)
	if len(names) == 0 {
		return nil, domainerrors.Validation("Provide 'name' or 'names'")
	}

	result := &AddGenresResult{Created: []string{}, Existing: []string{}}
	for _, name := range names {
		genre, created, err := s.store.GetOrCreateGenre(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("create genre %q: %w", name, err)
		}
		if created {
			result.Created = append(result.Created, genre.Name)
		} else {
			result.Existing = append(result.Existing, genre.Name)
		}
	}

	s.logger.Info("genres added", "created", len(result.Created), "existing", len(result.Existing))

	return result, nil
}

// ListGenres returns genres ordered by name, optionally filtered by a
// substring match.
func (s *AdminService) ListGenres(ctx context.Context, query string) ([]*domain.Genre, error) {
	genres, err := s.store.ListGenres(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	if genres == nil {
		genres = []*domain.Genre{}
	}
	return genres, nil
}

// EditGenre renames a genre, refreshing its slug.
func (s *AdminService) EditGenre(ctx context.Context, genreID int64, name string) (*domain.Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("Provide a new genre name")
	}

	genre, err := s.store.GetGenre(ctx, genreID)
	if err != nil {
		return nil, domainerrors.NotFound("Genre not found")
	}

	genre.Name = name
	genre.Slug = domain.Slugify(name)
	if err := s.store.UpdateGenre(ctx, genre); err != nil {
		return nil, fmt.Errorf("update genre: %w", err)
	}

	return genre, nil
}

// DeleteGenreResponse names the removed genre id.
type DeleteGenreResponse struct {
	Deleted int64 `json:"deleted"`
}

// DeleteGenre removes a genre record. Favorite lists referencing the
// name keep it; the dangling name drops out of profiles on read.
func (s *AdminService) DeleteGenre(ctx context.Context, genreID int64) (*DeleteGenreResponse, error) {
	if _, err := s.store.GetGenre(ctx, genreID); err != nil {
		return nil, domainerrors.NotFound("Genre not found")
	}

	if err := s.store.DeleteGenre(ctx, genreID); err != nil {
		return nil, fmt.Errorf("delete genre: %w", err)
	}

	s.logger.Info("genre deleted", "genre_id", genreID)

	return &DeleteGenreResponse{Deleted: genreID}, nil
}

// ImportBooksCSV runs the book CSV pipeline against an uploaded file.
func (s *AdminService) ImportBooksCSV(ctx context.Context, r io.Reader) (*importer.Report, error) {
	return s.importer.ImportCSV(ctx, r)
}

// ImportGenresCSV runs the genre CSV pipeline against an uploaded file.
func (s *AdminService) ImportGenresCSV(ctx context.Context, r io.Reader) (*importer.GenreReport, error) {
	return s.importer.ImportGenresCSV(ctx, r)
}

// DashboardStats aggregates the numbers the staff console shows.
type DashboardStats struct {
	TotalBooks        int64          `json:"total_books"`
	TotalUsers        int64          `json:"total_users"`
	TotalGenres       int64          `json:"total_genres"`
	TotalSavedBooks   int64          `json:"total_saved_books"`
	BooksAddedToday   int64          `json:"books_added_today"`
	AvgRating         float64        `json:"avg_rating"`
	MostPopularGenres []string       `json:"most_popular_genres"`
	RecentSearches    []string       `json:"recent_searches"`
	TopRatedBooks     []*domain.Book `json:"top_rated_books"`
}

// Dashboard computes the staff console aggregates.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	totalBooks, err := s.store.CountBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	totalUsers, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	totalGenres, err := s.store.CountGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("count genres: %w", err)
	}
	totalSaved, err := s.store.SumSavedBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum saved books: %w", err)
	}

	now := time.Now().UTC()
	addedToday, err := s.store.CountBooksCreatedOn(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("count books added today: %w", err)
	}

	avgRating, err := s.store.AverageRating(ctx)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	avgRating = math.Round(avgRating*10) / 10

	topGenres, err := s.store.TopGenres(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("top genres: %w", err)
	}
	popular := make([]string, 0, len(topGenres))
	for _, g := range topGenres {
		popular = append(popular, g.Name)
	}

	topRated, err := s.topRatedBooks(ctx, now)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalBooks:        totalBooks,
		TotalUsers:        totalUsers,
		TotalGenres:       totalGenres,
		TotalSavedBooks:   totalSaved,
		BooksAddedToday:   addedToday,
		AvgRating:         avgRating,
		MostPopularGenres: popular,
		RecentSearches:    recentSearches,
		TopRatedBooks:     topRated,
	}, nil
}

// topRatedBooks picks the best recently updated books, backfilling with
// the latest additions when the window comes up short.
func (s *AdminService) topRatedBooks(ctx context.Context, now time.Time) ([]*domain.Book, error) {
	books, err := s.store.TopRatedSince(ctx, now.Add(-topRatedWindow), topRatedCount)
	if err != nil {
		return nil, fmt.Errorf("top rated books: %w", err)
	}

	if len(books) < topRatedCount {
		exclude := make([]int64, 0, len(books))
		for _, b := range books {
			exclude = append(exclude, b.ID)
		}
		latest, err := s.store.LatestBooksExcluding(ctx, exclude, topRatedCount-len(books))
		if err != nil {
			return nil, fmt.Errorf("backfill top rated: %w", err)
		}
		books = append(books, latest...)
	}

	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// ReindexResult reports how many books went into the rebuilt index.
type ReindexResult struct {
	Indexed int `json:"indexed"`
}

// Reindex drops the search index and rebuilds it from the store.
func (s *AdminService) Reindex(ctx context.Context) (*ReindexResult, error) {
	if err := s.index.Rebuild(); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	docs := make([]*search.Document, 0, len(books))
	for _, b := range books {
		docs = append(docs, search.DocumentFromBook(b))
	}
	if err := s.index.IndexBooks(docs); err != nil {
		return nil, fmt.Errorf("index books: %w", err)
	}

	s.logger.Info("search index rebuilt", "indexed", len(docs))

	return &ReindexResult{Indexed: len(docs)}, nil
}

// indexBook updates the search index for one book. Index trouble is
// logged, not surfaced: the catalog row is the source of truth and the
// index can be rebuilt.
func (s *AdminService) indexBook(book *domain.Book) {
	if err := s.index.IndexBook(search.DocumentFromBook(book)); err != nil {
		s.logger.Warn("index book", "book_id", book.ID, "error", err)
	}
}

// cleanGenreNames trims and dedupes a list of genre names, dropping
// empties.
func cleanGenreNames(names []string) []string {
	cleaned := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cleaned = append(cleaned, name)
	}
	return cleaned
}
