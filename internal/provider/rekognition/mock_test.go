package rekognition

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// stubRekognition answers DetectFaces with a canned result and records inputs
type stubRekognition struct {
	out    *rekognition.DetectFacesOutput
	err    error
	inputs []*rekognition.DetectFacesInput
}

func returningFaces(details ...types.FaceDetail) *stubRekognition {
	return &stubRekognition{out: &rekognition.DetectFacesOutput{FaceDetails: details}}
}

func failingWith(err error) *stubRekognition {
	return &stubRekognition{err: err}
}

func (s *stubRekognition) DetectFaces(_ context.Context, params *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	s.inputs = append(s.inputs, params)
	if s.err != nil {
		return nil, s.err
	}
	if s.out == nil {
		return &rekognition.DetectFacesOutput{}, nil
	}
	return s.out, nil
}

var _ RekognitionAPI = (*stubRekognition)(nil)
