package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/internal/repositories"
)

type ProjectService struct {
	projectRepo      *repositories.ProjectRepository
	municipalityRepo *repositories.MunicipalityRepository
}

func NewProjectService(projectRepo *repositories.ProjectRepository, municipalityRepo *repositories.MunicipalityRepository) *ProjectService {
	return &ProjectService{
		projectRepo:      projectRepo,
		municipalityRepo: municipalityRepo,
	}
}

// CreateProject creates a new draft project and derives its affected
// municipalities from the geometry
func (s *ProjectService) CreateProject(project *models.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}

	if project.ApplicantID == uuid.Nil {
		return errors.New("applicant ID is required")
	}

	municipalities, err := s.resolveMunicipalities(project.Geometry)
	if err != nil {
		return err
	}
	project.AffectedMunicipalities = municipalities

	return s.projectRepo.Create(project)
}

// GetProjectByID retrieves a project by ID
func (s *ProjectService) GetProjectByID(id string) (*models.Project, error) {
	if id == "" {
		return nil, errors.New("project ID is required")
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New("invalid project ID format")
	}

	return s.projectRepo.GetByID(id)
}

// GetProjectsByApplicantID retrieves all projects for an applicant
func (s *ProjectService) GetProjectsByApplicantID(applicantID string) ([]*models.Project, error) {
	if applicantID == "" {
		return nil, errors.New("applicant ID is required")
	}

	if _, err := uuid.Parse(applicantID); err != nil {
		return nil, errors.New("invalid applicant ID format")
	}

	return s.projectRepo.GetByApplicantID(applicantID)
}

// UpdateProject updates a draft project's name, geometry and interval.
// Geometry changes re-derive the affected municipalities. Projects
// past draft are immutable through this path.
func (s *ProjectService) UpdateProject(project *models.Project, applicantID string) error {
	if err := project.Validate(); err != nil {
		return err
	}

	existing, err := s.projectRepo.GetByID(project.ID.String())
	if err != nil {
		return err
	}

	if existing.ApplicantID.String() != applicantID {
		return ErrNotProjectOwner
	}
	if existing.State != models.StateDraft {
		return ErrProjectNotEditable
	}

	municipalities, err := s.resolveMunicipalities(project.Geometry)
	if err != nil {
		return err
	}
	project.AffectedMunicipalities = municipalities

	return s.projectRepo.Update(project)
}

// DeleteProject removes a project. Only drafts may be deleted; any
// other state must go through the cancelled transition instead.
func (s *ProjectService) DeleteProject(id string, applicantID string) error {
	project, err := s.projectRepo.GetByID(id)
	if err != nil {
		return err
	}

	if project.ApplicantID.String() != applicantID {
		return ErrNotProjectOwner
	}
	if project.State != models.StateDraft {
		return ErrProjectNotDraft
	}

	return s.projectRepo.Delete(id)
}

// resolveMunicipalities derives municipality codes whose envelope
// overlaps the geometry's envelope
func (s *ProjectService) resolveMunicipalities(geometry models.Geometry) ([]string, error) {
	municipalities, err := s.municipalityRepo.GetAll()
	if err != nil {
		return nil, err
	}

	bbox := geometry.BoundingBox()
	var codes []string
	for _, m := range municipalities {
		if bbox.Intersects(m.BBox()) {
			codes = append(codes, m.Code)
		}
	}

	return codes, nil
}

// Common errors
var (
	ErrNotProjectOwner    = errors.New("only the applicant may modify this project")
	ErrProjectNotDraft    = errors.New("only draft projects can be deleted; cancel instead")
	ErrProjectNotEditable = errors.New("only draft projects can be edited")
)
